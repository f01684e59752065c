package handler

import (
	"strconv"
	"strings"
	"time"

	"casework/internal/review/models"
	"casework/internal/review/service"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

// CreateReviewRequest is the body of POST /reviews.
type CreateReviewRequest struct {
	ClientRef  string `json:"client_ref" validate:"required,max=64"`
	ReviewType string `json:"review_type" validate:"required"`
	Comments   string `json:"comments" validate:"max=4000"`

	clientRef  id.ClientRef
	reviewType models.ReviewType
}

func (r *CreateReviewRequest) Normalize() {
	r.ClientRef = strings.TrimSpace(r.ClientRef)
	r.ReviewType = strings.TrimSpace(r.ReviewType)
	r.Comments = strings.TrimSpace(r.Comments)
}

func (r *CreateReviewRequest) Validate() error {
	ref, err := id.ParseClientRef(r.ClientRef)
	if err != nil {
		return err
	}
	reviewType, err := models.ParseReviewType(r.ReviewType)
	if err != nil {
		return err
	}
	r.clientRef = ref
	r.reviewType = reviewType
	return nil
}

// ApproveRequest is the optional body of POST /reviews/{id}/approve.
type ApproveRequest struct {
	Comments string `json:"comments" validate:"max=4000"`
}

// RejectRequest is the body of POST /reviews/{id}/reject.
type RejectRequest struct {
	Reason   string `json:"reason" validate:"required,max=1000"`
	Comments string `json:"comments" validate:"max=4000"`
}

func (r *RejectRequest) Normalize() {
	r.Reason = strings.TrimSpace(r.Reason)
	r.Comments = strings.TrimSpace(r.Comments)
}

// CommentRequest is the body of POST /reviews/{id}/comments.
type CommentRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func (r *CommentRequest) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
}

// QuestionnaireRequest is the body of PATCH /reviews/{id}/questionnaire.
// Omitted fields are left unchanged.
type QuestionnaireRequest struct {
	PurposeOfAccount         *string  `json:"purpose_of_account"`
	KYCDocumentsComplete     *string  `json:"kyc_documents_complete"`
	MissingKYCDetails        *string  `json:"missing_kyc_details"`
	AccountPurposeAligned    *string  `json:"account_purpose_aligned"`
	AdverseMediaCompleted    *string  `json:"adverse_media_completed"`
	SeniorMgmtApproval       *string  `json:"senior_mgmt_approval"`
	PEPApprovalObtained      *string  `json:"pep_approval_obtained"`
	StaticDataCorrect        *string  `json:"static_data_correct"`
	KYCDocumentsValid        *string  `json:"kyc_documents_valid"`
	RegulatedBusinessLicense *string  `json:"regulated_business_license"`
	RemedialActions          *string  `json:"remedial_actions"`
	SourceOfFundsDocs        []string `json:"source_of_funds_docs" validate:"omitempty,max=50"`
}

func (r *QuestionnaireRequest) ToUpdate() models.QuestionnaireUpdate {
	return models.QuestionnaireUpdate{
		PurposeOfAccount:         r.PurposeOfAccount,
		KYCDocumentsComplete:     r.KYCDocumentsComplete,
		MissingKYCDetails:        r.MissingKYCDetails,
		AccountPurposeAligned:    r.AccountPurposeAligned,
		AdverseMediaCompleted:    r.AdverseMediaCompleted,
		SeniorMgmtApproval:       r.SeniorMgmtApproval,
		PEPApprovalObtained:      r.PEPApprovalObtained,
		StaticDataCorrect:        r.StaticDataCorrect,
		KYCDocumentsValid:        r.KYCDocumentsValid,
		RegulatedBusinessLicense: r.RegulatedBusinessLicense,
		RemedialActions:          r.RemedialActions,
		SourceOfFundsDocs:        r.SourceOfFundsDocs,
	}
}

// SourceOfFundsDocRequest is the body of POST /reviews/{id}/questionnaire/source-of-funds.
type SourceOfFundsDocRequest struct {
	DocID string `json:"doc_id" validate:"required,max=128"`
}

func (r *SourceOfFundsDocRequest) Normalize() {
	r.DocID = strings.TrimSpace(r.DocID)
}

// RegisterDocumentRequest is the body of POST /reviews/{id}/documents.
type RegisterDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required"`
	FileName     string `json:"file_name" validate:"required,max=255"`

	documentType models.DocumentType
}

func (r *RegisterDocumentRequest) Normalize() {
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.FileName = strings.TrimSpace(r.FileName)
}

func (r *RegisterDocumentRequest) Validate() error {
	t, err := models.ParseDocumentType(r.DocumentType)
	if err != nil {
		return err
	}
	r.documentType = t
	return nil
}

// OpenExceptionRequest is the body of POST /reviews/{id}/exceptions.
type OpenExceptionRequest struct {
	ExceptionType string     `json:"exception_type" validate:"required"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"max=4000"`
	Priority      string     `json:"priority"`
	DueDate       *time.Time `json:"due_date"`

	parsed service.OpenExceptionRequest
}

func (r *OpenExceptionRequest) Normalize() {
	r.ExceptionType = strings.TrimSpace(r.ExceptionType)
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Priority = strings.TrimSpace(r.Priority)
}

func (r *OpenExceptionRequest) Validate() error {
	t, err := models.ParseExceptionType(r.ExceptionType)
	if err != nil {
		return err
	}
	var priority models.ExceptionPriority
	if r.Priority != "" {
		if priority, err = models.ParseExceptionPriority(r.Priority); err != nil {
			return err
		}
	}
	r.parsed = service.OpenExceptionRequest{
		Type:        t,
		Title:       r.Title,
		Description: r.Description,
		Priority:    priority,
		DueDate:     r.DueDate,
	}
	return nil
}

// ResolveExceptionRequest is the body of POST /exceptions/{id}/resolve.
type ResolveExceptionRequest struct {
	Notes string `json:"notes" validate:"required,max=4000"`
}

func (r *ResolveExceptionRequest) Normalize() {
	r.Notes = strings.TrimSpace(r.Notes)
}

// EscalateExceptionRequest is the optional body of POST /exceptions/{id}/escalate.
type EscalateExceptionRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// AssignExceptionRequest is the body of POST /exceptions/{id}/assign.
type AssignExceptionRequest struct {
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

// parseReviewFilter reads list filters from the query string.
func parseReviewFilter(q map[string][]string) (models.ReviewFilter, error) {
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var filter models.ReviewFilter
	if v := get("status"); v != "" {
		status, err := models.ParseReviewStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if v := get("review_type"); v != "" {
		t, err := models.ParseReviewType(v)
		if err != nil {
			return filter, err
		}
		filter.ReviewType = &t
	}
	if v := get("client_ref"); v != "" {
		ref, err := id.ParseClientRef(v)
		if err != nil {
			return filter, err
		}
		filter.ClientRef = &ref
	}
	if v := get("auto_created"); v != "" {
		switch v {
		case "true":
			auto := true
			filter.AutoCreated = &auto
		case "false":
			auto := false
			filter.AutoCreated = &auto
		default:
			return filter, dErrors.New(dErrors.CodeValidation, "auto_created must be true or false")
		}
	}
	for key, dst := range map[string]**time.Time{"created_from": &filter.CreatedFrom, "created_to": &filter.CreatedTo} {
		v := get(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, dErrors.Newf(dErrors.CodeValidation, "%s must be an RFC 3339 timestamp", key)
		}
		*dst = &t
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, dErrors.Newf(dErrors.CodeValidation, "%s must be a non-negative integer", key)
		}
		*dst = n
	}
	return filter, nil
}

func parseExceptionFilter(q map[string][]string) (models.ExceptionFilter, error) {
	var filter models.ExceptionFilter
	if v := q["status"]; len(v) > 0 && v[0] != "" {
		status, err := models.ParseExceptionStatus(v[0])
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if v := q["priority"]; len(v) > 0 && v[0] != "" {
		p, err := models.ParseExceptionPriority(v[0])
		if err != nil {
			return filter, err
		}
		filter.Priority = &p
	}
	return filter, nil
}
