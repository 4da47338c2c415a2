package paycalc

import "time"

// DeductionActive reports whether a deduction applies to the period ending at
// periodEnd. Non-recurring deductions always apply. Recurring deductions
// apply when periodEnd falls inside the recurrence window; a zero boundary
// date leaves that side open. A zero periodEnd fails open so a stub can
// still be produced from partial period information.
func DeductionActive(d Deduction, periodEnd time.Time) bool {
	if !d.Recurring {
		return true
	}
	if periodEnd.IsZero() {
		return true
	}
	if !d.StartDate.IsZero() && periodEnd.Before(d.StartDate) {
		return false
	}
	if !d.EndDate.IsZero() && periodEnd.After(d.EndDate) {
		return false
	}
	return true
}

// ActiveDeductions filters a deduction list down to the entries active this
// period, preserving order. It never mutates the input.
func ActiveDeductions(list []Deduction, periodEnd time.Time) []Deduction {
	if len(list) == 0 {
		return nil
	}
	active := make([]Deduction, 0, len(list))
	for _, d := range list {
		if DeductionActive(d, periodEnd) {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return active
}
