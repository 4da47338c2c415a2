package paycalc

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssembleInput is the single consistent snapshot the assembler works from.
// The deduction lists must already be filtered for eligibility and the tax
// breakdown already aggregated for the worker's jurisdiction.
type AssembleInput struct {
	Company       CompanySnapshot
	Worker        WorkerSnapshot
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Gross         decimal.Decimal
	Earnings      []EarningLine
	PreTax        []Deduction
	Taxes         TaxBreakdown
	PostTax       []Deduction
	Contributions []ContributionInput
	PriorYTD      YTDTotals
}

// Assemble produces the immutable pay-stub record. It is deterministic:
// identical inputs yield an identical record. Net pay is allowed to go
// negative when deductions exceed gross; that is surfaced as-is. Employer
// contributions are computed against gross but never enter the deduction or
// net totals.
func Assemble(in AssembleInput) PayStubRecord {
	preTax := deductionLines(in.PreTax)
	postTax := deductionLines(in.PostTax)

	totalDeductions := sumDeductionLines(preTax).
		Add(in.Taxes.Total).
		Add(sumDeductionLines(postTax))
	net := in.Gross.Sub(totalDeductions)

	taxLines := make([]TaxLine, 0, len(in.Taxes.FederalLines)+len(in.Taxes.JurisdictionLines))
	taxLines = append(taxLines, in.Taxes.FederalLines...)
	taxLines = append(taxLines, in.Taxes.JurisdictionLines...)
	if len(taxLines) == 0 {
		taxLines = nil
	}

	var contributions []ContributionLine
	for _, c := range in.Contributions {
		contributions = append(contributions, ContributionLine{
			Description: c.Description,
			Rate:        c.Rate,
			Amount:      in.Gross.Mul(c.Rate).Round(2),
		})
	}

	return PayStubRecord{
		Company:               in.Company,
		Worker:                in.Worker,
		PeriodStart:           in.PeriodStart,
		PeriodEnd:             in.PeriodEnd,
		Earnings:              in.Earnings,
		GrossPay:              in.Gross,
		PreTaxDeductions:      preTax,
		TaxLines:              taxLines,
		PostTaxDeductions:     postTax,
		TotalDeductions:       totalDeductions,
		NetPay:                net,
		GrossYTD:              in.PriorYTD.Gross.Add(in.Gross),
		NetYTD:                in.PriorYTD.Net.Add(net),
		EmployerContributions: contributions,
	}
}

func deductionLines(list []Deduction) []DeductionLine {
	if len(list) == 0 {
		return nil
	}
	lines := make([]DeductionLine, 0, len(list))
	for _, d := range list {
		lines = append(lines, DeductionLine{Description: d.Description(), Amount: d.Amount})
	}
	return lines
}

func sumDeductionLines(lines []DeductionLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}
