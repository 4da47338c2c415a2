package paycalc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldError is one per-field validation failure. Validation errors block
// computation locally and never reach the estimation service.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateInput checks a period input before any computation runs.
func ValidateInput(in PeriodInput) []FieldError {
	var errs []FieldError

	switch in.PayType {
	case PayTypeHourly, PayTypeSalary:
	default:
		errs = append(errs, FieldError{Field: "payType", Reason: "must be hourly or salary"})
	}

	if !in.Rate.IsPositive() {
		errs = append(errs, FieldError{Field: "rate", Reason: "must be greater than zero"})
	}
	if in.RegularHours.IsNegative() {
		errs = append(errs, FieldError{Field: "regularHours", Reason: "must not be negative"})
	}
	if in.OvertimeHours.IsNegative() {
		errs = append(errs, FieldError{Field: "overtimeHours", Reason: "must not be negative"})
	}
	if in.PayType == PayTypeHourly && in.OvertimeHours.IsPositive() && in.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		errs = append(errs, FieldError{Field: "overtimeMultiplier", Reason: "must be at least 1"})
	}
	if in.Bonus.IsNegative() {
		errs = append(errs, FieldError{Field: "bonus", Reason: "must not be negative"})
	}
	if in.PayType == PayTypeSalary {
		if _, ok := periodsPerYear[in.Frequency]; !ok {
			errs = append(errs, FieldError{Field: "frequency", Reason: "must be weekly, bi-weekly, semi-monthly or monthly"})
		}
	}
	if !in.PeriodStart.IsZero() && !in.PeriodEnd.IsZero() && in.PeriodEnd.Before(in.PeriodStart) {
		errs = append(errs, FieldError{Field: "periodEnd", Reason: "must be on or after periodStart"})
	}
	return errs
}

// ValidateDeductions checks one deduction list; field names are prefixed so
// pre-tax and post-tax issues stay distinguishable in the response.
func ValidateDeductions(prefix string, list []Deduction) []FieldError {
	var errs []FieldError
	for i, d := range list {
		field := func(name string) string {
			return fmt.Sprintf("%s[%d].%s", prefix, i, name)
		}
		if strings.TrimSpace(d.Category) == "" {
			errs = append(errs, FieldError{Field: field("category"), Reason: "is required"})
		}
		if d.Category == CategoryOther && strings.TrimSpace(d.Label) == "" {
			errs = append(errs, FieldError{Field: field("label"), Reason: "is required for Other deductions"})
		}
		if d.Amount.IsNegative() {
			errs = append(errs, FieldError{Field: field("amount"), Reason: "must not be negative"})
		}
		if d.Recurring && !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
			errs = append(errs, FieldError{Field: field("endDate"), Reason: "must be on or after startDate"})
		}
	}
	return errs
}

// ValidateJurisdiction checks the jurisdiction code and any sub-jurisdiction
// the code requires (Maryland needs a resident county before estimation).
func ValidateJurisdiction(code, locality string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(code) == "" {
		errs = append(errs, FieldError{Field: "jurisdiction", Reason: "is required"})
		return errs
	}
	if RequiresLocality(code) && strings.TrimSpace(locality) == "" {
		errs = append(errs, FieldError{Field: "locality", Reason: "is required for " + strings.ToUpper(code)})
	}
	return errs
}
