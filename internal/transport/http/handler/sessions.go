package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-retail-api/internal/application/session"
	"github.com/go-retail-api/internal/domain"
)

// SessionHandler handles login, token refresh and logout.
type SessionHandler struct {
	svc session.Service
	dev bool
}

func NewSessionHandler(svc session.Service, dev bool) *SessionHandler {
	return &SessionHandler{svc: svc, dev: dev}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful.", result)
}

func (h *SessionHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	result, err := h.svc.LoginWithGoogle(r.Context(), req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Login successful.", result)
}

func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required.", codeValidation)
		return
	}
	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Token refreshed.", pair)
}

// Logout always reports success. Token revocation is best effort; a client
// discarding its tokens must never be blocked on server-side bookkeeping.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req domain.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = domain.LogoutRequest{}
	}
	h.svc.Logout(r.Context(), req)
	writeSuccess(w, http.StatusOK, "Logged out.", nil)
}
