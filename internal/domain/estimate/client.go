package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"paystub/internal/domain/paycalc"
)

var ErrEstimateFailed = errors.New("tax estimation failed")

// ServiceError carries the HTTP status of a failed estimation call. It is
// retryable: the caller surfaces it once and waits for a manual retry.
type ServiceError struct {
	Status int
	Reason string
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tax estimation failed: %s (status %d)", e.Reason, e.Status)
	}
	return "tax estimation failed: " + e.Reason
}

func (e *ServiceError) Unwrap() error { return ErrEstimateFailed }

// Client calls the external tax estimation service over HTTP. The service is
// opaque: it receives the period inputs and returns the flat field map.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Estimate(ctx context.Context, req Request) (paycalc.TaxFieldMap, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ServiceError{Reason: "encode request: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{Reason: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ServiceError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Status: resp.StatusCode, Reason: "service returned an error"}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ServiceError{Status: resp.StatusCode, Reason: "read response: " + err.Error()}
	}

	var fields paycalc.TaxFieldMap
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ServiceError{Status: resp.StatusCode, Reason: "malformed response"}
	}
	return fields, nil
}
