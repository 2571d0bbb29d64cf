package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-retail-api/internal/application/registration"
	"github.com/go-retail-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockRegistrationSvc struct{ mock.Mock }

func (m *mockRegistrationSvc) SendOTP(ctx context.Context, req domain.RegisterRequest) (*registration.SendResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*registration.SendResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*registration.VerifyResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*registration.VerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationSvc) ResendOTP(ctx context.Context, req domain.ResendOTPRequest) (*registration.SendResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*registration.SendResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

// --- tests ---

func TestSendOTP_Success(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("SendOTP", mock.Anything, mock.AnythingOfType("domain.RegisterRequest")).
		Return(&registration.SendResult{ExpiresIn: 600}, nil)

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.SendOTP, map[string]string{
		"email": "shopper@example.com", "password": "Sup3r$ecret", "name": "Alex",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Timestamp)
	assert.Nil(t, env.Error)
}

func TestSendOTP_MalformedBody(t *testing.T) {
	h := NewRegisterHandler(&mockRegistrationSvc{}, false)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.SendOTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestSendOTP_Conflict(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("SendOTP", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.ErrConflict, "An account with this email already exists."))

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.SendOTP, map[string]string{
		"email": "shopper@example.com", "password": "Sup3r$ecret", "name": "Alex",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "An account with this email already exists.", env.Message)
	assert.Equal(t, "conflict", env.Error.Code)
}

func TestSendOTP_RateLimitedSetsRetryAfter(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("SendOTP", mock.Anything, mock.Anything).
		Return(nil, &domain.RateLimitError{RetryAfter: 42, Reason: "verification code already sent"})

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.SendOTP, map[string]string{
		"email": "shopper@example.com", "password": "Sup3r$ecret", "name": "Alex",
	})

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "42", rr.Header().Get("Retry-After"))
	env := decodeEnvelope(t, rr)
	require.NotNil(t, env.Error)
	assert.Equal(t, "rate_limited", env.Error.Code)
	assert.Equal(t, 42, env.Error.RetryAfter)
}

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.AnythingOfType("domain.VerifyOTPRequest")).
		Return(&registration.VerifyResult{
			User:         &domain.User{UserID: "u1", Email: "shopper@example.com"},
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
		}, nil)

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.VerifyOTP, map[string]string{
		"email": "shopper@example.com", "otp": "123456",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"token":"access-token"`)
	assert.Contains(t, string(data), `"refreshToken":"refresh-token"`)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid verification code. 4 attempts remaining."))

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.VerifyOTP, map[string]string{
		"email": "shopper@example.com", "otp": "000000",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Invalid verification code. 4 attempts remaining.", env.Message)
	assert.Equal(t, "auth_error", env.Error.Code)
}

func TestVerifyOTP_InternalErrorRedactedOutsideDev(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.VerifyOTP, map[string]string{
		"email": "shopper@example.com", "otp": "123456",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Internal server error.", env.Message)
	assert.Equal(t, "internal_error", env.Error.Code)
}

func TestVerifyOTP_InternalErrorDetailInDev(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	h := NewRegisterHandler(svc, true)
	rr := postJSON(t, h.VerifyOTP, map[string]string{
		"email": "shopper@example.com", "otp": "123456",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, assert.AnError.Error(), env.Message)
}

func TestResendOTP_Success(t *testing.T) {
	svc := &mockRegistrationSvc{}
	svc.On("ResendOTP", mock.Anything, domain.ResendOTPRequest{Email: "shopper@example.com"}).
		Return(&registration.SendResult{ExpiresIn: 600}, nil)

	h := NewRegisterHandler(svc, false)
	rr := postJSON(t, h.ResendOTP, map[string]string{"email": "shopper@example.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}
