package models

import (
	"slices"
	"strings"
	"time"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

// YesNo is a two-way answer. The empty value means unanswered.
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

func (a YesNo) IsAnswered() bool { return a == Yes || a == No }

func ParseYesNo(field, s string) (YesNo, error) {
	switch a := YesNo(normalizeEnum(s)); a {
	case "", Yes, No:
		return a, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "%s must be one of yes, no", field)
}

// YesNoNA is a three-way answer. The empty value means unanswered.
type YesNoNA string

const (
	AnswerYes           YesNoNA = "yes"
	AnswerNo            YesNoNA = "no"
	AnswerNotApplicable YesNoNA = "not_applicable"
)

func (a YesNoNA) IsAnswered() bool {
	return a == AnswerYes || a == AnswerNo || a == AnswerNotApplicable
}

func ParseYesNoNA(field, s string) (YesNoNA, error) {
	switch a := YesNoNA(normalizeEnum(s)); a {
	case "", AnswerYes, AnswerNo, AnswerNotApplicable:
		return a, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "%s must be one of yes, no, not_applicable", field)
}

// Questionnaire field names as exposed to clients and in readiness reports.
const (
	FieldPurposeOfAccount         = "purpose_of_account"
	FieldKYCDocumentsComplete     = "kyc_documents_complete"
	FieldMissingKYCDetails        = "missing_kyc_details"
	FieldAccountPurposeAligned    = "account_purpose_aligned"
	FieldAdverseMediaCompleted    = "adverse_media_completed"
	FieldSeniorMgmtApproval       = "senior_mgmt_approval"
	FieldPEPApprovalObtained      = "pep_approval_obtained"
	FieldStaticDataCorrect        = "static_data_correct"
	FieldKYCDocumentsValid        = "kyc_documents_valid"
	FieldRegulatedBusinessLicense = "regulated_business_license"
	FieldRemedialActions          = "remedial_actions"
	FieldSourceOfFundsDocs        = "source_of_funds_docs"
)

const (
	maxFreeTextLength        = 4000
	maxSourceOfFundsDocs     = 50
	maxSourceOfFundsDocIDLen = 128
)

// KYCQuestionnaire holds the twelve KYC answers of one review. It is created on
// first write and is only mutable while its review is editable; the review
// enforces that gate, not the questionnaire.
type KYCQuestionnaire struct {
	ReviewID                 id.ReviewID `json:"review_id"`
	PurposeOfAccount         string      `json:"purpose_of_account"`
	KYCDocumentsComplete     YesNo       `json:"kyc_documents_complete"`
	MissingKYCDetails        string      `json:"missing_kyc_details"`
	AccountPurposeAligned    YesNo       `json:"account_purpose_aligned"`
	AdverseMediaCompleted    YesNo       `json:"adverse_media_completed"`
	SeniorMgmtApproval       YesNo       `json:"senior_mgmt_approval"`
	PEPApprovalObtained      YesNoNA     `json:"pep_approval_obtained"`
	StaticDataCorrect        YesNo       `json:"static_data_correct"`
	KYCDocumentsValid        YesNo       `json:"kyc_documents_valid"`
	RegulatedBusinessLicense YesNoNA     `json:"regulated_business_license"`
	RemedialActions          string      `json:"remedial_actions"`
	SourceOfFundsDocs        []string    `json:"source_of_funds_docs"`
	CreatedAt                time.Time   `json:"created_at"`
	UpdatedAt                time.Time   `json:"updated_at"`
}

func NewQuestionnaire(reviewID id.ReviewID, now time.Time) *KYCQuestionnaire {
	return &KYCQuestionnaire{
		ReviewID:          reviewID,
		SourceOfFundsDocs: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsComplete is the base completeness gate used before submission.
// Senior management approval and remedial actions are conditional requirements
// reported by ValidateConditionalFields and are not part of this gate.
func (q *KYCQuestionnaire) IsComplete() bool {
	return len(q.MissingFields()) == 0
}

// MissingFields lists the base-gate fields that are unanswered, in question order.
func (q *KYCQuestionnaire) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(q.PurposeOfAccount) == "" {
		missing = append(missing, FieldPurposeOfAccount)
	}
	if !q.KYCDocumentsComplete.IsAnswered() {
		missing = append(missing, FieldKYCDocumentsComplete)
	}
	if q.RequiresMissingKYCDetails() && strings.TrimSpace(q.MissingKYCDetails) == "" {
		missing = append(missing, FieldMissingKYCDetails)
	}
	if !q.AccountPurposeAligned.IsAnswered() {
		missing = append(missing, FieldAccountPurposeAligned)
	}
	if !q.AdverseMediaCompleted.IsAnswered() {
		missing = append(missing, FieldAdverseMediaCompleted)
	}
	if !q.PEPApprovalObtained.IsAnswered() {
		missing = append(missing, FieldPEPApprovalObtained)
	}
	if !q.StaticDataCorrect.IsAnswered() {
		missing = append(missing, FieldStaticDataCorrect)
	}
	if !q.KYCDocumentsValid.IsAnswered() {
		missing = append(missing, FieldKYCDocumentsValid)
	}
	if !q.RegulatedBusinessLicense.IsAnswered() {
		missing = append(missing, FieldRegulatedBusinessLicense)
	}
	if len(q.SourceOfFundsDocs) == 0 {
		missing = append(missing, FieldSourceOfFundsDocs)
	}
	return missing
}

func (q *KYCQuestionnaire) RequiresMissingKYCDetails() bool {
	return q.KYCDocumentsComplete == No
}

func (q *KYCQuestionnaire) RequiresRemedialActions() bool {
	return q.KYCDocumentsComplete == No ||
		q.AccountPurposeAligned == No ||
		q.StaticDataCorrect == No ||
		q.KYCDocumentsValid == No
}

// SeniorApprovalPolicy decides whether a questionnaire needs senior management
// approval.
type SeniorApprovalPolicy interface {
	RequiresSeniorApproval(q *KYCQuestionnaire) bool
}

// NoSeniorApproval never requires senior management approval.
type NoSeniorApproval struct{}

func (NoSeniorApproval) RequiresSeniorApproval(*KYCQuestionnaire) bool { return false }

// ValidateConditionalFields returns one message per unmet conditional requirement.
// A nil policy behaves like NoSeniorApproval.
func (q *KYCQuestionnaire) ValidateConditionalFields(policy SeniorApprovalPolicy) []string {
	if policy == nil {
		policy = NoSeniorApproval{}
	}
	var violations []string
	if q.RequiresMissingKYCDetails() && strings.TrimSpace(q.MissingKYCDetails) == "" {
		violations = append(violations, "missing KYC details are required when KYC documents are incomplete")
	}
	if q.RequiresRemedialActions() && strings.TrimSpace(q.RemedialActions) == "" {
		violations = append(violations, "remedial actions are required when any KYC check is answered no")
	}
	if policy.RequiresSeniorApproval(q) && q.SeniorMgmtApproval != Yes {
		violations = append(violations, "senior management approval is required")
	}
	return violations
}

// AddSourceOfFundsDoc adds a document id. Adding a present id is a no-op.
func (q *KYCQuestionnaire) AddSourceOfFundsDoc(docID string, now time.Time) error {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return dErrors.New(dErrors.CodeValidation, "document id is required")
	}
	if len(docID) > maxSourceOfFundsDocIDLen {
		return dErrors.New(dErrors.CodeValidation, "document id must be 128 characters or less")
	}
	if slices.Contains(q.SourceOfFundsDocs, docID) {
		return nil
	}
	if len(q.SourceOfFundsDocs) >= maxSourceOfFundsDocs {
		return dErrors.New(dErrors.CodeValidation, "too many source of funds documents")
	}
	q.SourceOfFundsDocs = append(q.SourceOfFundsDocs, docID)
	q.UpdatedAt = now
	return nil
}

// RemoveSourceOfFundsDoc removes a document id. Removing an absent id is a no-op.
func (q *KYCQuestionnaire) RemoveSourceOfFundsDoc(docID string, now time.Time) {
	docID = strings.TrimSpace(docID)
	idx := slices.Index(q.SourceOfFundsDocs, docID)
	if idx < 0 {
		return
	}
	q.SourceOfFundsDocs = slices.Delete(q.SourceOfFundsDocs, idx, idx+1)
	q.UpdatedAt = now
}

// QuestionnaireUpdate is a partial update; nil fields are left unchanged.
type QuestionnaireUpdate struct {
	PurposeOfAccount         *string
	KYCDocumentsComplete     *string
	MissingKYCDetails        *string
	AccountPurposeAligned    *string
	AdverseMediaCompleted    *string
	SeniorMgmtApproval       *string
	PEPApprovalObtained      *string
	StaticDataCorrect        *string
	KYCDocumentsValid        *string
	RegulatedBusinessLicense *string
	RemedialActions          *string
	SourceOfFundsDocs        []string
}

// Apply validates every supplied answer before changing anything.
func (q *KYCQuestionnaire) Apply(u QuestionnaireUpdate, now time.Time) error {
	next := *q
	next.SourceOfFundsDocs = slices.Clone(q.SourceOfFundsDocs)

	text := []struct {
		name string
		src  *string
		dst  *string
	}{
		{FieldPurposeOfAccount, u.PurposeOfAccount, &next.PurposeOfAccount},
		{FieldMissingKYCDetails, u.MissingKYCDetails, &next.MissingKYCDetails},
		{FieldRemedialActions, u.RemedialActions, &next.RemedialActions},
	}
	for _, f := range text {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if len(v) > maxFreeTextLength {
			return dErrors.Newf(dErrors.CodeValidation, "%s must be %d characters or less", f.name, maxFreeTextLength)
		}
		*f.dst = v
	}

	yesNo := []struct {
		name string
		src  *string
		dst  *YesNo
	}{
		{FieldKYCDocumentsComplete, u.KYCDocumentsComplete, &next.KYCDocumentsComplete},
		{FieldAccountPurposeAligned, u.AccountPurposeAligned, &next.AccountPurposeAligned},
		{FieldAdverseMediaCompleted, u.AdverseMediaCompleted, &next.AdverseMediaCompleted},
		{FieldSeniorMgmtApproval, u.SeniorMgmtApproval, &next.SeniorMgmtApproval},
		{FieldStaticDataCorrect, u.StaticDataCorrect, &next.StaticDataCorrect},
		{FieldKYCDocumentsValid, u.KYCDocumentsValid, &next.KYCDocumentsValid},
	}
	for _, f := range yesNo {
		if f.src == nil {
			continue
		}
		v, err := ParseYesNo(f.name, *f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	yesNoNA := []struct {
		name string
		src  *string
		dst  *YesNoNA
	}{
		{FieldPEPApprovalObtained, u.PEPApprovalObtained, &next.PEPApprovalObtained},
		{FieldRegulatedBusinessLicense, u.RegulatedBusinessLicense, &next.RegulatedBusinessLicense},
	}
	for _, f := range yesNoNA {
		if f.src == nil {
			continue
		}
		v, err := ParseYesNoNA(f.name, *f.src)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if u.SourceOfFundsDocs != nil {
		next.SourceOfFundsDocs = []string{}
		for _, docID := range u.SourceOfFundsDocs {
			if err := next.AddSourceOfFundsDoc(docID, now); err != nil {
				return err
			}
		}
	}

	next.UpdatedAt = now
	*q = next
	return nil
}
