package paystub

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paystub/internal/domain/estimate"
	"paystub/internal/domain/paycalc"
)

type fakeEstimator struct {
	calls  int
	fields paycalc.TaxFieldMap
	err    error
}

func (f *fakeEstimator) Estimate(ctx context.Context, req estimate.Request) (paycalc.TaxFieldMap, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func validRequest() ComputeRequest {
	return ComputeRequest{
		Worker: WorkerInput{
			ID:             "w-1",
			Name:           "Jordan Reyes",
			Classification: paycalc.ClassificationEmployee,
		},
		Period: paycalc.PeriodInput{
			PayType:      paycalc.PayTypeHourly,
			Rate:         decimal.RequireFromString("20"),
			RegularHours: decimal.RequireFromString("40"),
		},
		Jurisdiction: "NJ",
	}
}

func TestValidateAggregatesAcrossSections(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{})

	req := validRequest()
	req.Worker.ID = ""
	req.Worker.Classification = "intern"
	req.Period.Rate = decimal.Zero
	req.PreTax = []paycalc.Deduction{{Category: ""}}
	req.Jurisdiction = ""
	req.Contributions = []paycalc.ContributionInput{{Rate: decimal.RequireFromString("-0.01")}}

	errs := svc.Validate(req)

	byField := map[string]bool{}
	for _, e := range errs {
		byField[e.Field] = true
	}
	assert.True(t, byField["worker.id"])
	assert.True(t, byField["worker.classification"])
	assert.True(t, byField["rate"])
	assert.True(t, byField["preTaxDeductions[0].category"])
	assert.True(t, byField["jurisdiction"])
	assert.True(t, byField["employerContributions[0].rate"])
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	svc := NewService(nil, nil, &fakeEstimator{})
	assert.Empty(t, svc.Validate(validRequest()))
}

func TestPreviewBlocksOnValidationBeforeEstimation(t *testing.T) {
	estimator := &fakeEstimator{}
	svc := NewService(nil, nil, estimator)

	req := validRequest()
	req.Period.Rate = decimal.Zero

	_, err := svc.Preview(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.NotEmpty(t, vErr.Fields)
	assert.Zero(t, estimator.calls, "estimation must not run for invalid input")
}

func TestPreviewSurfacesEstimationFailure(t *testing.T) {
	estimator := &fakeEstimator{err: &estimate.ServiceError{Status: 503, Reason: "unavailable"}}
	svc := NewService(nil, nil, estimator)

	_, err := svc.Preview(context.Background(), validRequest())

	assert.ErrorIs(t, err, estimate.ErrEstimateFailed)
	assert.Equal(t, 1, estimator.calls, "failures surface once, with no automatic retry")
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []paycalc.FieldError{
		{Field: "rate", Reason: "must be greater than zero"},
		{Field: "jurisdiction", Reason: "is required"},
	}}
	assert.Equal(t, "input validation failed", err.Error())
	assert.Len(t, err.Fields, 2)

	var target *ValidationError
	assert.True(t, errors.As(err, &target))
}
