package companyhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paystub/internal/domain/audit"
	"paystub/internal/domain/company"
	"paystub/internal/transport/http/api"
	"paystub/internal/transport/http/middleware"
	"paystub/internal/transport/http/shared"
)

type Handler struct {
	Store *company.Store
	Audit *audit.Service
}

func NewHandler(store *company.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/company", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", h.handleGet)
		r.Put("/", h.handlePut)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Store.Load(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_load_failed", "failed to load company profile", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var profile company.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Address1 = strings.TrimSpace(profile.Address1)
	profile.Address2 = strings.TrimSpace(profile.Address2)
	profile.TaxID = strings.TrimSpace(profile.TaxID)

	validator := shared.NewValidator()
	validator.Required("name", profile.Name, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.Save(r.Context(), profile); err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_save_failed", "failed to save company profile", middleware.GetRequestID(r.Context()))
		return
	}
	user, _ := middleware.GetUser(r.Context())
	h.Audit.Record(r.Context(), user.UserID, audit.ActionCompanyUpdate, "", middleware.GetRequestID(r.Context()), profile)
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}
