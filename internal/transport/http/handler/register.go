package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-retail-api/internal/application/registration"
	"github.com/go-retail-api/internal/domain"
)

// RegisterHandler handles the two-phase OTP registration endpoints.
type RegisterHandler struct {
	svc registration.Service
	dev bool
}

func NewRegisterHandler(svc registration.Service, dev bool) *RegisterHandler {
	return &RegisterHandler{svc: svc, dev: dev}
}

func (h *RegisterHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	result, err := h.svc.SendOTP(r.Context(), req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Verification code sent. Please check your email.", result)
}

func (h *RegisterHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	result, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusCreated, "Registration complete.", result)
}

func (h *RegisterHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	result, err := h.svc.ResendOTP(r.Context(), req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Verification code resent. Please check your email.", result)
}
