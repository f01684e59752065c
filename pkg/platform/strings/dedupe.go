// Package strings holds small helpers for list-valued settings.
package strings

import (
	"strings"
)

// SplitList splits a comma separated value, trimming each element and dropping
// empties and repeats. Order of first appearance is kept. An input with no
// elements returns nil.
//
//	SplitList(" kafka-1:9092, kafka-2:9092 ,kafka-1:9092,")
//	// []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(raw string) []string {
	return DedupeAndTrim(strings.Split(raw, ","))
}

// DedupeAndTrim trims every element and drops empties and repeats.
func DedupeAndTrim(values []string) []string {
	var result []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
