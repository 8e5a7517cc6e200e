package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mportela/qbnotes/internal/auth"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/validate", h.validate)
}

type validateRequest struct {
	Email string `json:"email"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Plan   string `json:"plan"`
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	res := h.svc.Validate(req.Email)

	resp := validateResponse{
		Valid:  res.Valid,
		Plan:   res.Plan,
		UserID: res.UserID,
	}

	if res.Valid && h.svc.CanIssueTokens() {
		token, err := h.svc.IssueToken(req.Email, res)
		if err != nil {
			slog.Error("failed to issue token", "error", err)
		} else {
			resp.Token = token
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// RequireSubscription gates a route tree behind a verified bearer token.
func (h *Handler) RequireSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}

		claims, err := h.svc.VerifyToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}

		slog.Debug("authenticated request", "email", claims.Email, "plan", claims.Plan)

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
