package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "only separators", input: " , ,", expected: nil},
		{name: "single", input: "kafka:9092", expected: []string{"kafka:9092"}},
		{
			name:     "trims and keeps order",
			input:    " b:9092 , a:9092",
			expected: []string{"b:9092", "a:9092"},
		},
		{
			name:     "drops repeats",
			input:    "a:9092,b:9092,a:9092",
			expected: []string{"a:9092", "b:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{"foo", "bar"}, DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "}))
	assert.Equal(t, []string{"Foo", "foo"}, DedupeAndTrim([]string{"Foo", "foo"}), "case is significant")
}
