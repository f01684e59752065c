package models

import (
	"strings"
	"time"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

const maxFileNameLength = 255

// Document is the metadata of a supporting file attached to a review. File bytes
// live in external storage and are never held here.
type Document struct {
	ID           id.DocumentID `json:"id"`
	ReviewID     id.ReviewID   `json:"review_id"`
	DocumentType DocumentType  `json:"document_type"`
	FileName     string        `json:"file_name"`
	UploadedBy   id.UserID     `json:"uploaded_by"`
	UploadedAt   time.Time     `json:"uploaded_at"`
}

func NewDocument(docID id.DocumentID, reviewID id.ReviewID, docType DocumentType, fileName string, uploadedBy id.UserID, now time.Time) (*Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file name is required")
	}
	if len(fileName) > maxFileNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file name must be 255 characters or less")
	}
	if !docType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid document type: %q", docType)
	}
	return &Document{
		ID:           docID,
		ReviewID:     reviewID,
		DocumentType: docType,
		FileName:     fileName,
		UploadedBy:   uploadedBy,
		UploadedAt:   now,
	}, nil
}

// DocumentTypes returns the distinct types present in docs.
func DocumentTypes(docs []*Document) map[DocumentType]bool {
	types := make(map[DocumentType]bool, len(docs))
	for _, d := range docs {
		types[d.DocumentType] = true
	}
	return types
}
