package paycalc

import "github.com/shopspring/decimal"

// TaxBreakdown is the aggregated statutory withholding for one calculation:
// the shared federal components plus the active jurisdiction's components.
// Lines carry only nonzero amounts, in descriptor order, for display.
type TaxBreakdown struct {
	FederalLines      []TaxLine       `json:"federalLines"`
	JurisdictionLines []TaxLine       `json:"jurisdictionLines"`
	FederalTotal      decimal.Decimal `json:"federalTotal"`
	JurisdictionTotal decimal.Decimal `json:"jurisdictionTotal"`
	Total             decimal.Decimal `json:"total"`
}

// AggregateTaxes selects and sums the tax fields belonging to the active
// jurisdiction plus the federal trio. Fields tagged for other jurisdictions
// are expected to be zero in the map and are never consulted. Contractors
// have no statutory withholding, so the breakdown is forced to zero
// regardless of the map contents.
func AggregateTaxes(m TaxFieldMap, code string, class Classification) TaxBreakdown {
	zero := TaxBreakdown{
		FederalTotal:      decimal.Zero,
		JurisdictionTotal: decimal.Zero,
		Total:             decimal.Zero,
	}
	if class == ClassificationContractor {
		return zero
	}

	breakdown := zero
	for _, field := range FederalFields {
		amount := m.Amount(field)
		breakdown.FederalTotal = breakdown.FederalTotal.Add(amount)
		if !amount.IsZero() {
			breakdown.FederalLines = append(breakdown.FederalLines, TaxLine{
				Field:  field,
				Label:  labelFor(field),
				Amount: amount,
			})
		}
	}

	descriptor, _ := DescriptorFor(code)
	if descriptor.Combine != nil {
		breakdown.JurisdictionTotal, breakdown.JurisdictionLines = descriptor.Combine(m)
	} else {
		breakdown.JurisdictionTotal, breakdown.JurisdictionLines = sumFields(m, descriptor.Fields)
	}

	breakdown.Total = breakdown.FederalTotal.Add(breakdown.JurisdictionTotal)
	return breakdown
}

func sumFields(m TaxFieldMap, fields []string) (decimal.Decimal, []TaxLine) {
	total := decimal.Zero
	var lines []TaxLine
	for _, field := range fields {
		amount := m.Amount(field)
		total = total.Add(amount)
		if !amount.IsZero() {
			lines = append(lines, TaxLine{Field: field, Label: labelFor(field), Amount: amount})
		}
	}
	return total, lines
}
