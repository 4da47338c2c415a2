package paycalc

import "github.com/shopspring/decimal"

var periodsPerYear = map[PayFrequency]int64{
	FrequencyWeekly:      52,
	FrequencyBiWeekly:    26,
	FrequencySemiMonthly: 24,
	FrequencyMonthly:     12,
}

// GrossPay computes the period gross and its earning line items. Line amounts
// are rounded to cents individually so the returned gross always equals the
// sum of the lines.
func GrossPay(in PeriodInput) (decimal.Decimal, []EarningLine, error) {
	if !in.Rate.IsPositive() {
		return decimal.Zero, nil, ErrInvalidRate
	}

	var lines []EarningLine
	switch in.PayType {
	case PayTypeHourly:
		regular := in.Rate.Mul(in.RegularHours).Round(2)
		lines = append(lines, EarningLine{
			Description: "Regular",
			Rate:        in.Rate,
			Units:       in.RegularHours,
			Amount:      regular,
		})
		if in.OvertimeHours.IsPositive() {
			overtimeRate := in.Rate.Mul(in.OvertimeMultiplier)
			lines = append(lines, EarningLine{
				Description: "Overtime",
				Rate:        overtimeRate,
				Units:       in.OvertimeHours,
				Amount:      overtimeRate.Mul(in.OvertimeHours).Round(2),
			})
		}
	case PayTypeSalary:
		periods, ok := periodsPerYear[in.Frequency]
		if !ok {
			return decimal.Zero, nil, ErrUnknownFrequency
		}
		periodSalary := in.Rate.Div(decimal.NewFromInt(periods)).Round(2)
		lines = append(lines, EarningLine{
			Description: "Salary",
			Rate:        periodSalary,
			Units:       decimal.NewFromInt(1),
			Amount:      periodSalary,
		})
	default:
		return decimal.Zero, nil, ErrUnknownPayType
	}

	if in.Bonus.IsPositive() {
		lines = append(lines, EarningLine{
			Description: "Bonus",
			Rate:        decimal.Zero,
			Units:       decimal.Zero,
			Amount:      in.Bonus.Round(2),
		})
	}

	gross := decimal.Zero
	for _, line := range lines {
		gross = gross.Add(line.Amount)
	}
	return gross, lines, nil
}
