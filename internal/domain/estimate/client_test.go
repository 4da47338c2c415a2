package estimate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paystub/internal/domain/paycalc"
)

func estimateRequest() Request {
	return Request{
		Period: paycalc.PeriodInput{
			PayType:      paycalc.PayTypeHourly,
			Rate:         decimal.RequireFromString("20"),
			RegularHours: decimal.RequireFromString("40"),
		},
		Jurisdiction:   "NJ",
		Classification: paycalc.ClassificationEmployee,
		Elections:      Elections{FilingStatus: "single", Allowances: 1},
	}
}

func TestClientEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "NJ", req.Jurisdiction)

		_ = json.NewEncoder(w).Encode(map[string]string{
			"federalIncomeTax": "120.50",
			"njStateIncomeTax": "40",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	fields, err := client.Estimate(context.Background(), estimateRequest())
	require.NoError(t, err)
	assert.Equal(t, "120.5", fields["federalIncomeTax"].String())
	assert.Equal(t, "40", fields["njStateIncomeTax"].String())
}

func TestClientEstimateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Estimate(context.Background(), estimateRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEstimateFailed)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
}

func TestClientEstimateMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Estimate(context.Background(), estimateRequest())
	assert.ErrorIs(t, err, ErrEstimateFailed)
}

func TestClientEstimateUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.Estimate(context.Background(), estimateRequest())
	assert.ErrorIs(t, err, ErrEstimateFailed)
}
