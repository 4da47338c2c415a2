package paystub

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"paystub/internal/domain/company"
	"paystub/internal/domain/estimate"
	"paystub/internal/domain/paycalc"
)

// Service runs the pay computation pipeline: validate, gross pay, deduction
// eligibility, external tax estimation (latest request wins), aggregation,
// and assembly. Preview computes without persisting; Finalize persists the
// record and rolls the worker's YTD totals forward.
type Service struct {
	store     *Store
	companies *company.Store
	estimator estimate.Estimator
	sessions  *estimate.Registry
}

func NewService(store *Store, companies *company.Store, estimator estimate.Estimator) *Service {
	return &Service{
		store:     store,
		companies: companies,
		estimator: estimator,
		sessions:  estimate.NewRegistry(),
	}
}

// Validate collects every per-field issue for a request. A non-empty result
// blocks computation; nothing is sent to the estimation service.
func (s *Service) Validate(req ComputeRequest) []paycalc.FieldError {
	var errs []paycalc.FieldError
	if req.Worker.ID == "" {
		errs = append(errs, paycalc.FieldError{Field: "worker.id", Reason: "is required"})
	}
	switch req.Worker.Classification {
	case paycalc.ClassificationEmployee, paycalc.ClassificationContractor:
	default:
		errs = append(errs, paycalc.FieldError{Field: "worker.classification", Reason: "must be employee or contractor"})
	}
	errs = append(errs, paycalc.ValidateInput(req.Period)...)
	errs = append(errs, paycalc.ValidateDeductions("preTaxDeductions", req.PreTax)...)
	errs = append(errs, paycalc.ValidateDeductions("postTaxDeductions", req.PostTax)...)
	errs = append(errs, paycalc.ValidateJurisdiction(req.Jurisdiction, req.Locality)...)
	for i, c := range req.Contributions {
		if c.Rate.IsNegative() {
			errs = append(errs, paycalc.FieldError{
				Field:  "employerContributions[" + strconv.Itoa(i) + "].rate",
				Reason: "must not be negative",
			})
		}
	}
	return errs
}

// Preview runs the pipeline without persisting anything. The returned record
// carries the worker's current YTD totals rolled forward, exactly as a
// Finalize with the same inputs would produce.
func (s *Service) Preview(ctx context.Context, req ComputeRequest) (paycalc.PayStubRecord, error) {
	return s.compute(ctx, req)
}

// Finalize runs the pipeline, persists the stub and rolls the YTD totals.
func (s *Service) Finalize(ctx context.Context, req ComputeRequest) (string, paycalc.PayStubRecord, error) {
	record, err := s.compute(ctx, req)
	if err != nil {
		return "", paycalc.PayStubRecord{}, err
	}
	id := uuid.NewString()
	if err := s.store.SaveStub(ctx, id, record); err != nil {
		return "", paycalc.PayStubRecord{}, err
	}
	return id, record, nil
}

func (s *Service) compute(ctx context.Context, req ComputeRequest) (paycalc.PayStubRecord, error) {
	if errs := s.Validate(req); len(errs) > 0 {
		return paycalc.PayStubRecord{}, &ValidationError{Fields: errs}
	}

	gross, earnings, err := paycalc.GrossPay(req.Period)
	if err != nil {
		return paycalc.PayStubRecord{}, err
	}

	activePre := paycalc.ActiveDeductions(req.PreTax, req.Period.PeriodEnd)
	activePost := paycalc.ActiveDeductions(req.PostTax, req.Period.PeriodEnd)

	// Latest request wins per worker: starting a new estimation clears any
	// published breakdown, and a result that lost the race is discarded.
	coordinator := s.sessions.For(req.Worker.ID)
	gen := coordinator.Begin()
	fields, err := s.estimator.Estimate(ctx, estimate.Request{
		Period:           req.Period,
		Jurisdiction:     req.Jurisdiction,
		Locality:         req.Locality,
		Classification:   req.Worker.Classification,
		Elections:        req.Elections,
		PreTaxDeductions: activePre,
	})
	if err != nil {
		return paycalc.PayStubRecord{}, err
	}
	if !coordinator.Apply(gen, fields) {
		return paycalc.PayStubRecord{}, ErrSuperseded
	}

	taxes := paycalc.AggregateTaxes(fields, req.Jurisdiction, req.Worker.Classification)

	priorYTD, err := s.store.YTD(ctx, req.Worker.ID)
	if err != nil {
		return paycalc.PayStubRecord{}, err
	}

	profile, err := s.companies.Load(ctx)
	if err != nil {
		return paycalc.PayStubRecord{}, err
	}

	return paycalc.Assemble(paycalc.AssembleInput{
		Company:       profile.Snapshot(),
		Worker:        req.snapshot(),
		PeriodStart:   req.Period.PeriodStart,
		PeriodEnd:     req.Period.PeriodEnd,
		Gross:         gross,
		Earnings:      earnings,
		PreTax:        activePre,
		Taxes:         taxes,
		PostTax:       activePost,
		Contributions: req.Contributions,
		PriorYTD:      priorYTD,
	}), nil
}

func (s *Service) Stub(ctx context.Context, id string) (paycalc.PayStubRecord, error) {
	return s.store.GetStub(ctx, id)
}

func (s *Service) List(ctx context.Context, workerID string, limit, offset int) ([]Summary, error) {
	return s.store.ListStubs(ctx, workerID, limit, offset)
}

func (s *Service) YTD(ctx context.Context, workerID string) (paycalc.YTDTotals, error) {
	return s.store.YTD(ctx, workerID)
}

// EvictIdleSessions drops per-worker estimation coordinators that have been
// idle for longer than the window, keeping the registry bounded on a
// long-lived server.
func (s *Service) EvictIdleSessions(olderThan time.Duration) int {
	return s.sessions.Evict(olderThan)
}
