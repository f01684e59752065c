package models

import (
	"strings"

	dErrors "casework/pkg/domain-errors"
)

// ReviewStatus is the position of a review in the maker/checker workflow.
type ReviewStatus string

const (
	ReviewStatusDraft       ReviewStatus = "draft"
	ReviewStatusSubmitted   ReviewStatus = "submitted"
	ReviewStatusUnderReview ReviewStatus = "under_review"
	ReviewStatusApproved    ReviewStatus = "approved"
	ReviewStatusRejected    ReviewStatus = "rejected"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusDraft, ReviewStatusSubmitted, ReviewStatusUnderReview, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// IsOpen reports whether the review has not reached a decision.
func (s ReviewStatus) IsOpen() bool {
	switch s {
	case ReviewStatusDraft, ReviewStatusSubmitted, ReviewStatusUnderReview:
		return true
	case ReviewStatusApproved, ReviewStatusRejected:
		return false
	}
	return false
}

func (s ReviewStatus) String() string { return string(s) }

func ParseReviewStatus(s string) (ReviewStatus, error) {
	status := ReviewStatus(normalizeEnum(s))
	if !status.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid review status: %q", s)
	}
	return status, nil
}

// OpenReviewStatuses lists the statuses that count as an open review.
func OpenReviewStatuses() []ReviewStatus {
	return []ReviewStatus{ReviewStatusDraft, ReviewStatusSubmitted, ReviewStatusUnderReview}
}

// ReviewType is the kind of periodic review.
type ReviewType string

const (
	ReviewTypeManual    ReviewType = "manual"
	ReviewTypeKYC       ReviewType = "kyc"
	ReviewTypeAML       ReviewType = "aml"
	ReviewTypeSanctions ReviewType = "sanctions"
	ReviewTypePEP       ReviewType = "pep"
	ReviewTypeFinancial ReviewType = "financial"
)

func (t ReviewType) IsValid() bool {
	switch t {
	case ReviewTypeManual, ReviewTypeKYC, ReviewTypeAML, ReviewTypeSanctions, ReviewTypePEP, ReviewTypeFinancial:
		return true
	}
	return false
}

// RequiresQuestionnaire reports whether submission needs a KYC questionnaire.
func (t ReviewType) RequiresQuestionnaire() bool {
	return t == ReviewTypeKYC
}

func (t ReviewType) String() string { return string(t) }

func ParseReviewType(s string) (ReviewType, error) {
	t := ReviewType(normalizeEnum(s))
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid review type: %q", s)
	}
	return t, nil
}

// ExceptionStatus is the lifecycle state of a compliance exception.
type ExceptionStatus string

const (
	ExceptionStatusOpen       ExceptionStatus = "open"
	ExceptionStatusInProgress ExceptionStatus = "in_progress"
	ExceptionStatusResolved   ExceptionStatus = "resolved"
	ExceptionStatusClosed     ExceptionStatus = "closed"
	ExceptionStatusEscalated  ExceptionStatus = "escalated"
)

func (s ExceptionStatus) IsValid() bool {
	switch s {
	case ExceptionStatusOpen, ExceptionStatusInProgress, ExceptionStatusResolved, ExceptionStatusClosed, ExceptionStatusEscalated:
		return true
	}
	return false
}

// IsActive reports whether the exception still needs work.
func (s ExceptionStatus) IsActive() bool {
	switch s {
	case ExceptionStatusOpen, ExceptionStatusInProgress, ExceptionStatusEscalated:
		return true
	case ExceptionStatusResolved, ExceptionStatusClosed:
		return false
	}
	return false
}

func (s ExceptionStatus) String() string { return string(s) }

func ParseExceptionStatus(s string) (ExceptionStatus, error) {
	status := ExceptionStatus(normalizeEnum(s))
	if !status.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid exception status: %q", s)
	}
	return status, nil
}

// ActiveExceptionStatuses lists the statuses that count as active.
func ActiveExceptionStatuses() []ExceptionStatus {
	return []ExceptionStatus{ExceptionStatusOpen, ExceptionStatusInProgress, ExceptionStatusEscalated}
}

type ExceptionType string

const (
	ExceptionTypeKYCNonCompliance     ExceptionType = "kyc_non_compliance"
	ExceptionTypeDormantFundedUFAA    ExceptionType = "dormant_funded_ufaa"
	ExceptionTypeDormantOverdrawnExit ExceptionType = "dormant_overdrawn_exit"
	ExceptionTypeDocumentation        ExceptionType = "documentation"
	ExceptionTypeCompliance           ExceptionType = "compliance"
	ExceptionTypeTechnical            ExceptionType = "technical"
	ExceptionTypeOperational          ExceptionType = "operational"
)

func (t ExceptionType) IsValid() bool {
	switch t {
	case ExceptionTypeKYCNonCompliance, ExceptionTypeDormantFundedUFAA, ExceptionTypeDormantOverdrawnExit,
		ExceptionTypeDocumentation, ExceptionTypeCompliance, ExceptionTypeTechnical, ExceptionTypeOperational:
		return true
	}
	return false
}

func ParseExceptionType(s string) (ExceptionType, error) {
	t := ExceptionType(normalizeEnum(s))
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid exception type: %q", s)
	}
	return t, nil
}

type ExceptionPriority string

const (
	PriorityLow      ExceptionPriority = "low"
	PriorityMedium   ExceptionPriority = "medium"
	PriorityHigh     ExceptionPriority = "high"
	PriorityCritical ExceptionPriority = "critical"
)

func (p ExceptionPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ParseExceptionPriority(s string) (ExceptionPriority, error) {
	p := ExceptionPriority(normalizeEnum(s))
	if !p.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid exception priority: %q", s)
	}
	return p, nil
}

// RiskLevel grades a client.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(normalizeEnum(s))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid risk level: %q", s)
	}
	return r, nil
}

// DocumentType classifies uploaded supporting evidence.
type DocumentType string

const (
	DocumentIdentity            DocumentType = "identity"
	DocumentProofOfAddress      DocumentType = "proof_of_address"
	DocumentSourceOfFunds       DocumentType = "source_of_funds"
	DocumentBankStatement       DocumentType = "bank_statement"
	DocumentCompanyRegistration DocumentType = "company_registration"
	DocumentFinancialStatement  DocumentType = "financial_statement"
	DocumentOther               DocumentType = "other"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentIdentity, DocumentProofOfAddress, DocumentSourceOfFunds, DocumentBankStatement,
		DocumentCompanyRegistration, DocumentFinancialStatement, DocumentOther:
		return true
	}
	return false
}

func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(normalizeEnum(s))
	if !d.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid document type: %q", s)
	}
	return d, nil
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
