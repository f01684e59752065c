// Package autoreview creates the periodic reviews that high-risk clients are
// flagged for, sweeps every eligible client on a schedule and retires
// auto-created drafts that nobody picked up.
package autoreview

import (
	"casework/internal/review/models"
	dErrors "casework/pkg/domain-errors"
)

// PlanForClient lists the review types a client is flagged for, in the fixed
// order kyc, aml, sanctions, pep, financial. Clients that are not high risk or
// carry no flag are not eligible.
func PlanForClient(c *models.Client) ([]models.ReviewType, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "client is required")
	}
	if !c.IsHighRisk() {
		return nil, dErrors.Newf(dErrors.CodeNotEligible, "client %s is not high risk", c.Ref)
	}
	flags := []struct {
		enabled    bool
		reviewType models.ReviewType
	}{
		{c.AutoKYCReview, models.ReviewTypeKYC},
		{c.AutoAMLReview, models.ReviewTypeAML},
		{c.AutoSanctionsReview, models.ReviewTypeSanctions},
		{c.AutoPEPReview, models.ReviewTypePEP},
		{c.AutoFinancialReview, models.ReviewTypeFinancial},
	}
	var types []models.ReviewType
	for _, f := range flags {
		if f.enabled {
			types = append(types, f.reviewType)
		}
	}
	if len(types) == 0 {
		return nil, dErrors.Newf(dErrors.CodeNotEligible, "client %s has no auto-review flags", c.Ref)
	}
	return types, nil
}
