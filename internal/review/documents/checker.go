// Package documents decides whether a review carries the supporting documents its
// client's risk level calls for.
package documents

import (
	"casework/internal/review/models"
)

// Requirement lists the document types expected at one risk level.
type Requirement struct {
	Required    []models.DocumentType
	Recommended []models.DocumentType
}

// Result is the outcome of a check. Only MissingRequired blocks submission.
type Result struct {
	RiskLevel          models.RiskLevel      `json:"risk_level"`
	Satisfied          bool                  `json:"satisfied"`
	MissingRequired    []models.DocumentType `json:"missing_required"`
	MissingRecommended []models.DocumentType `json:"missing_recommended"`
}

// Checker holds the requirement table by risk level.
type Checker struct {
	requirements map[models.RiskLevel]Requirement
}

// DefaultRequirements returns the standard table.
func DefaultRequirements() map[models.RiskLevel]Requirement {
	return map[models.RiskLevel]Requirement{
		models.RiskLow: {
			Required:    []models.DocumentType{models.DocumentIdentity},
			Recommended: []models.DocumentType{models.DocumentProofOfAddress},
		},
		models.RiskMedium: {
			Required:    []models.DocumentType{models.DocumentIdentity, models.DocumentProofOfAddress},
			Recommended: []models.DocumentType{models.DocumentSourceOfFunds},
		},
		models.RiskHigh: {
			Required:    []models.DocumentType{models.DocumentIdentity, models.DocumentProofOfAddress, models.DocumentSourceOfFunds},
			Recommended: []models.DocumentType{models.DocumentBankStatement, models.DocumentFinancialStatement},
		},
	}
}

// NewChecker builds a checker. A nil table uses DefaultRequirements.
func NewChecker(requirements map[models.RiskLevel]Requirement) *Checker {
	if requirements == nil {
		requirements = DefaultRequirements()
	}
	return &Checker{requirements: requirements}
}

// Check compares the uploaded documents with the table entry for the risk level.
// An unknown risk level is treated as high.
func (c *Checker) Check(risk models.RiskLevel, uploaded []*models.Document) Result {
	req, ok := c.requirements[risk]
	if !ok {
		risk = models.RiskHigh
		req = c.requirements[models.RiskHigh]
	}
	present := models.DocumentTypes(uploaded)

	res := Result{
		RiskLevel:          risk,
		MissingRequired:    []models.DocumentType{},
		MissingRecommended: []models.DocumentType{},
	}
	for _, t := range req.Required {
		if !present[t] {
			res.MissingRequired = append(res.MissingRequired, t)
		}
	}
	for _, t := range req.Recommended {
		if !present[t] {
			res.MissingRecommended = append(res.MissingRecommended, t)
		}
	}
	res.Satisfied = len(res.MissingRequired) == 0
	return res
}
