package authhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"paystub/internal/domain/audit"
	"paystub/internal/domain/auth"
	"paystub/internal/transport/http/api"
	"paystub/internal/transport/http/middleware"
	"paystub/internal/transport/http/shared"
)

type Handler struct {
	Store    *auth.Store
	Secret   string
	TokenTTL time.Duration
	Audit    *audit.Service
}

func NewHandler(store *auth.Store, secret string, tokenTTL time.Duration, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Secret: secret, TokenTTL: tokenTTL, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireUser).Post("/logout", h.handleLogout)
	})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, reqID) {
		return
	}

	user, err := h.Store.FindUserByEmail(r.Context(), payload.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", reqID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Name: user.Name}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to issue token", reqID)
		return
	}

	if err := h.Store.CreateSession(r.Context(), user.ID, tokenHash(token), time.Now().Add(h.TokenTTL)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to create session", reqID)
		return
	}
	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last login failed", "err", err)
	}
	h.Audit.Record(r.Context(), user.ID, audit.ActionLogin, "", reqID, nil)

	api.Success(w, map[string]any{
		"token":     token,
		"expiresAt": time.Now().Add(h.TokenTTL).UTC().Format(time.RFC3339),
		"user":      map[string]string{"id": user.ID, "name": user.Name, "email": user.Email},
	}, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.Store.RevokeSession(r.Context(), user.UserID, tokenHash(raw)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "logout_failed", "failed to revoke session", reqID)
		return
	}
	h.Audit.Record(r.Context(), user.UserID, audit.ActionLogout, "", reqID, nil)
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

// tokenHash stores only a digest of the JWT so the sessions table never
// holds a usable credential.
func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
