package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-retail-api/internal/application/user"
	"github.com/go-retail-api/internal/domain"
	"github.com/go-retail-api/internal/transport/http/middleware"
)

// ProfileHandler handles the authenticated profile endpoints.
type ProfileHandler struct {
	svc user.Service
	dev bool
}

func NewProfileHandler(svc user.Service, dev bool) *ProfileHandler {
	return &ProfileHandler{svc: svc, dev: dev}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.", codeAuth)
		return
	}
	u, err := h.svc.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "", u)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.", codeAuth)
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", codeValidation)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile updated.", u)
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.", codeAuth)
		return
	}
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Avatar == "" {
		writeError(w, http.StatusBadRequest, "Avatar image is required.", codeValidation)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), claims.UserID, domain.UpdateProfileRequest{AvatarBase64: &req.Avatar})
	if err != nil {
		httpError(w, err, h.dev)
		return
	}
	writeSuccess(w, http.StatusOK, "Avatar updated.", u)
}
