package estimate

import (
	"context"

	"paystub/internal/domain/paycalc"
)

// Elections are the per-jurisdiction withholding elections forwarded to the
// estimation service untouched. Exemptions is keyed by component field name.
type Elections struct {
	FilingStatus string          `json:"filingStatus"`
	Allowances   int             `json:"allowances"`
	Exemptions   map[string]bool `json:"exemptions,omitempty"`
}

// Request is the estimation service input contract. PreTaxDeductions must
// already be filtered for eligibility; the service reduces taxable wages by
// them but never sees inactive entries.
type Request struct {
	Period           paycalc.PeriodInput    `json:"period"`
	Jurisdiction     string                 `json:"jurisdiction"`
	Locality         string                 `json:"locality,omitempty"`
	Classification   paycalc.Classification `json:"classification"`
	Elections        Elections              `json:"elections"`
	PreTaxDeductions []paycalc.Deduction    `json:"preTaxDeductions,omitempty"`
}

// Estimator returns the flat jurisdiction-tagged tax-field map for one
// period's inputs. The amounts themselves are opaque to this system.
type Estimator interface {
	Estimate(ctx context.Context, req Request) (paycalc.TaxFieldMap, error)
}
