package paystubshandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paystub/internal/domain/audit"
	"paystub/internal/domain/estimate"
	"paystub/internal/domain/paycalc"
	"paystub/internal/domain/paystub"
	cryptoutil "paystub/internal/platform/crypto"
	"paystub/internal/platform/metrics"
	"paystub/internal/transport/http/api"
	"paystub/internal/transport/http/middleware"
	"paystub/internal/transport/http/shared"
)

const finalizeEndpoint = "paystubs.finalize"

type Handler struct {
	Service *paystub.Service
	Crypto  *cryptoutil.Service
	Metrics *metrics.Collector
	Idem    *middleware.IdempotencyStore
	Audit   *audit.Service
}

func NewHandler(service *paystub.Service, crypto *cryptoutil.Service, collector *metrics.Collector, idem *middleware.IdempotencyStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Crypto: crypto, Metrics: collector, Idem: idem, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/paystubs", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/preview", h.handlePreview)
		r.Post("/", h.handleFinalize)
		r.Get("/", h.handleList)
		r.Get("/{stubID}", h.handleGet)
		r.Get("/{stubID}/download", h.handleDownload)
	})
	r.With(middleware.RequireUser).Get("/workers/{workerID}/ytd", h.handleYTD)
}

type workerPayload struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
}

type periodPayload struct {
	PayType            string          `json:"payType"`
	Rate               decimal.Decimal `json:"rate"`
	RegularHours       decimal.Decimal `json:"regularHours"`
	OvertimeHours      decimal.Decimal `json:"overtimeHours"`
	OvertimeMultiplier decimal.Decimal `json:"overtimeMultiplier"`
	Bonus              decimal.Decimal `json:"bonus"`
	Frequency          string          `json:"frequency"`
	StartDate          string          `json:"startDate"`
	EndDate            string          `json:"endDate"`
}

type deductionPayload struct {
	Category  string          `json:"category"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Recurring bool            `json:"recurring"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
}

type contributionPayload struct {
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate"`
}

type computePayload struct {
	Worker                workerPayload         `json:"worker"`
	Period                periodPayload         `json:"period"`
	PreTaxDeductions      []deductionPayload    `json:"preTaxDeductions"`
	PostTaxDeductions     []deductionPayload    `json:"postTaxDeductions"`
	Jurisdiction          string                `json:"jurisdiction"`
	Locality              string                `json:"locality"`
	Elections             estimate.Elections    `json:"elections"`
	EmployerContributions []contributionPayload `json:"employerContributions"`
}

// toRequest converts the wire payload into a domain request. Date strings
// are parsed here; empty strings stay zero times (open-ended windows).
func (p computePayload) toRequest(v *shared.Validator) paystub.ComputeRequest {
	req := paystub.ComputeRequest{
		Worker: paystub.WorkerInput{
			ID:             strings.TrimSpace(p.Worker.ID),
			Name:           strings.TrimSpace(p.Worker.Name),
			Classification: paycalc.Classification(p.Worker.Classification),
		},
		Period: paycalc.PeriodInput{
			PayType:            paycalc.PayType(p.Period.PayType),
			Rate:               p.Period.Rate,
			RegularHours:       p.Period.RegularHours,
			OvertimeHours:      p.Period.OvertimeHours,
			OvertimeMultiplier: p.Period.OvertimeMultiplier,
			Bonus:              p.Period.Bonus,
			Frequency:          paycalc.PayFrequency(p.Period.Frequency),
		},
		Jurisdiction: strings.TrimSpace(p.Jurisdiction),
		Locality:     strings.TrimSpace(p.Locality),
		Elections:    p.Elections,
	}
	req.Period.PeriodStart = parseOptionalDate(v, "period.startDate", p.Period.StartDate)
	req.Period.PeriodEnd = parseOptionalDate(v, "period.endDate", p.Period.EndDate)
	req.PreTax = toDeductions(v, "preTaxDeductions", p.PreTaxDeductions)
	req.PostTax = toDeductions(v, "postTaxDeductions", p.PostTaxDeductions)
	for _, c := range p.EmployerContributions {
		req.Contributions = append(req.Contributions, paycalc.ContributionInput{
			Description: c.Description,
			Rate:        c.Rate,
		})
	}
	return req
}

func toDeductions(v *shared.Validator, prefix string, payloads []deductionPayload) []paycalc.Deduction {
	var out []paycalc.Deduction
	for i, p := range payloads {
		d := paycalc.Deduction{
			Category:  p.Category,
			Label:     p.Label,
			Amount:    p.Amount,
			Recurring: p.Recurring,
		}
		field := prefix + "[" + strconv.Itoa(i) + "]"
		d.StartDate = parseOptionalDate(v, field+".startDate", p.StartDate)
		d.EndDate = parseOptionalDate(v, field+".endDate", p.EndDate)
		out = append(out, d)
	}
	return out
}

func parseOptionalDate(v *shared.Validator, field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := shared.ParseDate(raw)
	if err != nil {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}
	}
	return parsed
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (paystub.ComputeRequest, []byte, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", middleware.GetRequestID(r.Context()))
		return paystub.ComputeRequest{}, nil, false
	}
	var payload computePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return paystub.ComputeRequest{}, nil, false
	}
	validator := shared.NewValidator()
	req := payload.toRequest(validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return paystub.ComputeRequest{}, nil, false
	}
	return req, raw, true
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decode(w, r)
	if !ok {
		return
	}
	record, err := h.Service.Preview(r.Context(), req)
	if err != nil {
		h.failCompute(w, r, err)
		return
	}
	h.Metrics.RecordEstimation(false)
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	req, raw, ok := h.decode(w, r)
	if !ok {
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(raw)
	if idemKey != "" {
		// The key is reserved before Finalize runs so a concurrent duplicate
		// cannot also finalize and roll YTD a second time.
		stored, state, err := h.Idem.Reserve(r.Context(), user.UserID, finalizeEndpoint, idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "paystub_finalize_failed", "failed to finalize pay stub", middleware.GetRequestID(r.Context()))
			return
		}
		switch state {
		case middleware.ReserveReplay:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(stored)
			return
		case middleware.ReserveInFlight:
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "a request with this idempotency key is still in progress", middleware.GetRequestID(r.Context()))
			return
		}
	}

	id, record, err := h.Service.Finalize(r.Context(), req)
	if err != nil {
		if idemKey != "" {
			if relErr := h.Idem.Release(r.Context(), user.UserID, finalizeEndpoint, idemKey); relErr != nil {
				slog.Warn("idempotency release failed", "err", relErr)
			}
		}
		h.failCompute(w, r, err)
		return
	}
	h.Metrics.RecordEstimation(false)
	h.Audit.Record(r.Context(), user.UserID, audit.ActionStubFinalize, id, middleware.GetRequestID(r.Context()), map[string]any{
		"workerId": record.Worker.ID,
		"grossPay": record.GrossPay,
		"netPay":   record.NetPay,
	})

	data := map[string]any{"id": id, "record": record}
	if idemKey != "" {
		envelope := api.Envelope{Success: true, Data: data, RequestID: middleware.GetRequestID(r.Context())}
		if body, err := json.Marshal(envelope); err == nil {
			if err := h.Idem.Complete(r.Context(), user.UserID, finalizeEndpoint, idemKey, body); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Created(w, data, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	workerID := strings.TrimSpace(r.URL.Query().Get("workerId"))
	page := shared.ParsePagination(r, 50, 200)
	stubs, err := h.Service.List(r.Context(), workerID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "paystub_list_failed", "failed to list pay stubs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stubs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Stub(r.Context(), chi.URLParam(r, "stubID"))
	if errors.Is(err, paystub.ErrStubNotFound) {
		api.Fail(w, http.StatusNotFound, "paystub_not_found", "pay stub not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "paystub_get_failed", "failed to load pay stub", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, record, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	stubID := chi.URLParam(r, "stubID")
	path, err := h.Service.GeneratePDF(r.Context(), stubID, h.Crypto)
	if errors.Is(err, paystub.ErrStubNotFound) {
		api.Fail(w, http.StatusNotFound, "paystub_not_found", "pay stub not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "paystub_pdf_failed", "failed to render pay stub", middleware.GetRequestID(r.Context()))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "paystub_pdf_failed", "failed to read rendered pay stub", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.HasSuffix(path, ".enc") {
		if data, err = h.Crypto.Decrypt(data); err != nil {
			api.Fail(w, http.StatusInternalServerError, "paystub_pdf_failed", "failed to decrypt pay stub", middleware.GetRequestID(r.Context()))
			return
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="paystub-`+stubID+`.pdf"`)
	_, _ = io.Copy(w, bytes.NewReader(data))
}

func (h *Handler) handleYTD(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Service.YTD(r.Context(), chi.URLParam(r, "workerID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ytd_failed", "failed to load YTD totals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, totals, middleware.GetRequestID(r.Context()))
}

// failCompute maps pipeline failures onto the error taxonomy: per-field
// validation issues, a retryable estimation failure, or a superseded
// calculation.
func (h *Handler) failCompute(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())

	var vErr *paystub.ValidationError
	if errors.As(err, &vErr) {
		shared.FailValidation(w, reqID, shared.IssuesFromFieldErrors(vErr.Fields))
		return
	}
	if errors.Is(err, estimate.ErrEstimateFailed) {
		h.Metrics.RecordEstimation(true)
		api.Fail(w, http.StatusBadGateway, "estimation_failed", err.Error(), reqID)
		return
	}
	if errors.Is(err, paystub.ErrSuperseded) {
		h.Metrics.RecordStaleEstimate()
		api.Fail(w, http.StatusConflict, "superseded", "a newer calculation for this worker is in progress", reqID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "paystub_compute_failed", "failed to compute pay stub", reqID)
}
