package models

import (
	"strings"
	"time"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

// Client is the subject of reviews. It outlives every review that references it.
type Client struct {
	Ref                 id.ClientRef `json:"client_ref"`
	Name                string       `json:"name"`
	RiskLevel           RiskLevel    `json:"risk_level"`
	AMLRisk             RiskLevel    `json:"aml_risk"`
	AutoKYCReview       bool         `json:"auto_kyc_review"`
	AutoAMLReview       bool         `json:"auto_aml_review"`
	AutoSanctionsReview bool         `json:"auto_sanctions_review"`
	AutoPEPReview       bool         `json:"auto_pep_review"`
	AutoFinancialReview bool         `json:"auto_financial_review"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

func NewClient(ref id.ClientRef, name string, risk, amlRisk RiskLevel, now time.Time) (*Client, error) {
	name = strings.TrimSpace(name)
	if ref == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client reference is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client name is required")
	}
	if !risk.IsValid() || !amlRisk.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid risk level")
	}
	return &Client{
		Ref:       ref,
		Name:      name,
		RiskLevel: risk,
		AMLRisk:   amlRisk,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsHighRisk reports whether the client qualifies for auto-created reviews.
func (c *Client) IsHighRisk() bool {
	return c.RiskLevel == RiskHigh
}

// HasAutoReviewFlags reports whether any auto-review flag is enabled.
func (c *Client) HasAutoReviewFlags() bool {
	return c.AutoKYCReview || c.AutoAMLReview || c.AutoSanctionsReview || c.AutoPEPReview || c.AutoFinancialReview
}

// IsAutoReviewEligible combines both eligibility conditions.
func (c *Client) IsAutoReviewEligible() bool {
	return c.IsHighRisk() && c.HasAutoReviewFlags()
}
