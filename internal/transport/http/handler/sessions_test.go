package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-retail-api/internal/application/session"
	"github.com/go-retail-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) Login(ctx context.Context, req domain.LoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if p, _ := args.Get(0).(*domain.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionSvc) Logout(ctx context.Context, req domain.LogoutRequest) {
	m.Called(ctx, req)
}

// --- tests ---

func TestLogin_Success(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Login", mock.Anything, domain.LoginRequest{
		Email: "shopper@example.com", Password: "Sup3r$ecret",
	}).Return(&session.LoginResult{
		User: &domain.User{UserID: "u1", Email: "shopper@example.com"},
		TokenPair: domain.TokenPair{
			AccessToken: "access-token", RefreshToken: "refresh-token", ExpiresIn: 900,
		},
	}, nil)

	h := NewSessionHandler(svc, false)
	rr := postJSON(t, h.Login, map[string]string{
		"email": "shopper@example.com", "password": "Sup3r$ecret",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful.", env.Message)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid email or password."))

	h := NewSessionHandler(svc, false)
	rr := postJSON(t, h.Login, map[string]string{
		"email": "shopper@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "Invalid email or password.", env.Message)
	assert.Equal(t, "auth_error", env.Error.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewSessionHandler(&mockSessionSvc{}, false)
	rr := postJSON(t, h.Refresh, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestRefresh_Success(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Refresh", mock.Anything, "refresh-token").Return(&domain.TokenPair{
		AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 900,
	}, nil)

	h := NewSessionHandler(svc, false)
	rr := postJSON(t, h.Refresh, map[string]string{"refreshToken": "refresh-token"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token":"new-access"`)
	assert.Contains(t, rr.Body.String(), `"refreshToken":"new-refresh"`)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Logout", mock.Anything, domain.LogoutRequest{RefreshToken: "whatever"}).Return()

	h := NewSessionHandler(svc, false)
	rr := postJSON(t, h.Logout, map[string]string{"refreshToken": "whatever"})

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
}

func TestLogout_MalformedBodyStillSucceeds(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("Logout", mock.Anything, domain.LogoutRequest{}).Return()

	h := NewSessionHandler(svc, false)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestLoginWithGoogle_VerificationFailure(t *testing.T) {
	svc := &mockSessionSvc{}
	svc.On("LoginWithGoogle", mock.Anything, domain.GoogleLoginRequest{IDToken: "bad"}).
		Return(nil, domain.E(domain.ErrUnauthorized, "Invalid Google token."))

	h := NewSessionHandler(svc, false)
	rr := postJSON(t, h.LoginWithGoogle, map[string]string{"idToken": "bad"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotNil(t, decodeEnvelope(t, rr).Error)
}
