// Package domain holds typed identifiers shared across bounded contexts.
//
// Typed IDs keep review, exception and document identifiers from being mixed up
// at compile time. Parse functions are the trust boundary: they reject empty,
// malformed and nil values with CodeInvalidInput.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "casework/pkg/domain-errors"
)

type (
	ReviewID    uuid.UUID
	ExceptionID uuid.UUID
	DocumentID  uuid.UUID
)

// UserID identifies an actor supplied by the identity provider.
type UserID int64

// ClientRef is the business key of a client (not a surrogate key).
type ClientRef string

const maxClientRefLength = 64

func NewReviewID() ReviewID       { return ReviewID(uuid.New()) }
func NewExceptionID() ExceptionID { return ExceptionID(uuid.New()) }
func NewDocumentID() DocumentID   { return DocumentID(uuid.New()) }

func (id ReviewID) String() string    { return uuid.UUID(id).String() }
func (id ExceptionID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string  { return uuid.UUID(id).String() }

func (id ReviewID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ExceptionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id UserID) IsNil() bool    { return id <= 0 }

func (r ClientRef) String() string { return string(r) }

func ParseReviewID(s string) (ReviewID, error) {
	u, err := parseUUID(s, "review_id")
	return ReviewID(u), err
}

func ParseExceptionID(s string) (ExceptionID, error) {
	u, err := parseUUID(s, "exception_id")
	return ExceptionID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document_id")
	return DocumentID(u), err
}

// ParseUserID accepts a positive base-10 integer.
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "user_id must be a positive integer")
	}
	return UserID(n), nil
}

// ParseClientRef accepts letters, digits, '-' and '_' up to 64 characters.
func ParseClientRef(s string) (ClientRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "client_ref is required")
	}
	if len(s) > maxClientRefLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "client_ref must be at most 64 characters")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "client_ref contains invalid characters")
		}
	}
	return ClientRef(s), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	// uuid.Parse also accepts braced and urn forms; only the canonical form is allowed here.
	if len(s) != 36 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}

func (id ReviewID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ExceptionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *ReviewID) UnmarshalText(b []byte) error {
	parsed, err := ParseReviewID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ExceptionID) UnmarshalText(b []byte) error {
	parsed, err := ParseExceptionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
