package paycalc

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayType string

const (
	PayTypeHourly PayType = "hourly"
	PayTypeSalary PayType = "salary"
)

type PayFrequency string

const (
	FrequencyWeekly      PayFrequency = "weekly"
	FrequencyBiWeekly    PayFrequency = "bi-weekly"
	FrequencySemiMonthly PayFrequency = "semi-monthly"
	FrequencyMonthly     PayFrequency = "monthly"
)

type Classification string

const (
	ClassificationEmployee   Classification = "employee"
	ClassificationContractor Classification = "contractor"
)

const CategoryOther = "Other"

// PeriodInput is one pay period's raw inputs. Rate is the hourly rate for
// hourly workers and the annual salary for salaried workers.
type PeriodInput struct {
	PayType            PayType         `json:"payType"`
	Rate               decimal.Decimal `json:"rate"`
	RegularHours       decimal.Decimal `json:"regularHours"`
	OvertimeHours      decimal.Decimal `json:"overtimeHours"`
	OvertimeMultiplier decimal.Decimal `json:"overtimeMultiplier"`
	Bonus              decimal.Decimal `json:"bonus"`
	Frequency          PayFrequency    `json:"frequency"`
	PeriodStart        time.Time       `json:"periodStart"`
	PeriodEnd          time.Time       `json:"periodEnd"`
}

// Deduction is a voluntary deduction as entered by the preparer. A zero
// StartDate or EndDate leaves that side of the recurrence window open.
type Deduction struct {
	Category  string          `json:"category"`
	Label     string          `json:"label,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Recurring bool            `json:"recurring"`
	StartDate time.Time       `json:"startDate,omitempty"`
	EndDate   time.Time       `json:"endDate,omitempty"`
}

// Description is the display name for a deduction line: the custom label for
// "Other" deductions, the category name otherwise.
func (d Deduction) Description() string {
	if d.Category == CategoryOther && d.Label != "" {
		return d.Label
	}
	return d.Category
}

// TaxFieldMap is the flat jurisdiction-tagged amount map produced by the
// estimation service. Keys follow the <prefix><Component> convention, e.g.
// "njStateIncomeTax" or "federalIncomeTax". It is treated as immutable.
type TaxFieldMap map[string]decimal.Decimal

// Amount returns the mapped value, zero-filling missing keys.
func (m TaxFieldMap) Amount(field string) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	if v, ok := m[field]; ok {
		return v
	}
	return decimal.Zero
}

type EarningLine struct {
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
	Units       decimal.Decimal `json:"units"`
	Amount      decimal.Decimal `json:"amount"`
}

type DeductionLine struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type TaxLine struct {
	Field  string          `json:"field"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ContributionInput is an employer-paid premium expressed as a rate applied
// to gross pay. Contributions never reduce the worker's net pay.
type ContributionInput struct {
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
}

type ContributionLine struct {
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// YTDTotals are the carried-forward accumulators for one worker. They are
// owned by the caller and rolled forward once per assembly.
type YTDTotals struct {
	Gross decimal.Decimal `json:"gross"`
	Net   decimal.Decimal `json:"net"`
}

type CompanySnapshot struct {
	Name     string `json:"name"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	TaxID    string `json:"taxId,omitempty"`
}

type WorkerSnapshot struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Jurisdiction   string         `json:"jurisdiction"`
	Classification Classification `json:"classification"`
}

// PayStubRecord is the assembled, immutable output of one pipeline run.
// Downstream renderers display subsets of these fields without re-deriving
// any total, so the invariants must hold exactly:
//
//	GrossPay        = sum of Earnings amounts
//	TotalDeductions = pre-tax + tax lines + post-tax
//	NetPay          = GrossPay - TotalDeductions
type PayStubRecord struct {
	Company               CompanySnapshot    `json:"company"`
	Worker                WorkerSnapshot     `json:"worker"`
	PeriodStart           time.Time          `json:"periodStart"`
	PeriodEnd             time.Time          `json:"periodEnd"`
	Earnings              []EarningLine      `json:"earnings"`
	GrossPay              decimal.Decimal    `json:"grossPay"`
	PreTaxDeductions      []DeductionLine    `json:"preTaxDeductions"`
	TaxLines              []TaxLine          `json:"taxLines"`
	PostTaxDeductions     []DeductionLine    `json:"postTaxDeductions"`
	TotalDeductions       decimal.Decimal    `json:"totalDeductions"`
	NetPay                decimal.Decimal    `json:"netPay"`
	GrossYTD              decimal.Decimal    `json:"grossYtd"`
	NetYTD                decimal.Decimal    `json:"netYtd"`
	EmployerContributions []ContributionLine `json:"employerContributions"`
}
