package paystub

import (
	"time"

	"github.com/shopspring/decimal"

	"paystub/internal/domain/estimate"
	"paystub/internal/domain/paycalc"
)

// ComputeRequest is one full input snapshot for the pipeline. Every
// recomputation passes a fresh snapshot; nothing is cached between runs.
type ComputeRequest struct {
	Worker        WorkerInput                 `json:"worker"`
	Period        paycalc.PeriodInput         `json:"period"`
	PreTax        []paycalc.Deduction         `json:"preTaxDeductions,omitempty"`
	PostTax       []paycalc.Deduction         `json:"postTaxDeductions,omitempty"`
	Jurisdiction  string                      `json:"jurisdiction"`
	Locality      string                      `json:"locality,omitempty"`
	Elections     estimate.Elections          `json:"elections"`
	Contributions []paycalc.ContributionInput `json:"employerContributions,omitempty"`
}

type WorkerInput struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Classification paycalc.Classification `json:"classification"`
}

func (r ComputeRequest) snapshot() paycalc.WorkerSnapshot {
	return paycalc.WorkerSnapshot{
		ID:             r.Worker.ID,
		Name:           r.Worker.Name,
		Jurisdiction:   r.Jurisdiction,
		Classification: r.Worker.Classification,
	}
}

// Summary is the list view of a persisted stub.
type Summary struct {
	ID          string          `json:"id"`
	WorkerID    string          `json:"workerId"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	GrossPay    decimal.Decimal `json:"grossPay"`
	NetPay      decimal.Decimal `json:"netPay"`
	CreatedAt   time.Time       `json:"createdAt"`
}
