package paycalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeductionActive(t *testing.T) {
	periodEnd := date(2025, time.June, 15)

	cases := []struct {
		name      string
		deduction Deduction
		periodEnd time.Time
		want      bool
	}{
		{
			name:      "non-recurring always applies",
			deduction: Deduction{Category: "Garnishment", StartDate: date(2025, time.July, 1), EndDate: date(2025, time.July, 31)},
			periodEnd: periodEnd,
			want:      true,
		},
		{
			name:      "recurring inside window",
			deduction: Deduction{Category: "401k", Recurring: true, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.December, 31)},
			periodEnd: periodEnd,
			want:      true,
		},
		{
			name:      "recurring before window starts",
			deduction: Deduction{Category: "401k", Recurring: true, StartDate: date(2025, time.July, 1)},
			periodEnd: periodEnd,
			want:      false,
		},
		{
			name:      "recurring after window ends",
			deduction: Deduction{Category: "401k", Recurring: true, EndDate: date(2025, time.May, 31)},
			periodEnd: periodEnd,
			want:      false,
		},
		{
			name:      "boundary dates are inclusive",
			deduction: Deduction{Category: "Health", Recurring: true, StartDate: periodEnd, EndDate: periodEnd},
			periodEnd: periodEnd,
			want:      true,
		},
		{
			name:      "open-ended window",
			deduction: Deduction{Category: "Health", Recurring: true},
			periodEnd: periodEnd,
			want:      true,
		},
		{
			name:      "missing period end fails open",
			deduction: Deduction{Category: "Health", Recurring: true, StartDate: date(2025, time.July, 1)},
			periodEnd: time.Time{},
			want:      true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeductionActive(tc.deduction, tc.periodEnd))
		})
	}
}

func TestActiveDeductionsPreservesOrder(t *testing.T) {
	periodEnd := date(2025, time.June, 15)
	list := []Deduction{
		{Category: "401k", Recurring: true},
		{Category: "Expired", Recurring: true, EndDate: date(2025, time.January, 31)},
		{Category: "Health", Recurring: true},
	}

	active := ActiveDeductions(list, periodEnd)
	assert.Len(t, active, 2)
	assert.Equal(t, "401k", active[0].Category)
	assert.Equal(t, "Health", active[1].Category)
	assert.Len(t, list, 3)
}

func TestActiveDeductionsEmpty(t *testing.T) {
	assert.Nil(t, ActiveDeductions(nil, date(2025, time.June, 15)))
	assert.Nil(t, ActiveDeductions([]Deduction{
		{Category: "Expired", Recurring: true, EndDate: date(2024, time.December, 31)},
	}, date(2025, time.June, 15)))
}
