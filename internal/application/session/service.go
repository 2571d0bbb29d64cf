// Package session issues, rotates and best-effort-invalidates access/refresh
// token pairs.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-retail-api/internal/application/activity"
	"github.com/go-retail-api/internal/domain"
	googleauth "github.com/go-retail-api/internal/infrastructure/google"
	jwtinfra "github.com/go-retail-api/internal/infrastructure/jwt"
	"github.com/go-retail-api/internal/pkg/hash"
	"github.com/go-retail-api/internal/pkg/id"
	"github.com/go-retail-api/internal/pkg/validate"
)

// Uniform credential failure: wording never reveals whether the email exists.
const msgInvalidCredentials = "Invalid email or password."

type LoginResult struct {
	User *domain.User `json:"user"`
	domain.TokenPair
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, req domain.LogoutRequest)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, tokenID string) (*domain.Session, error)
	Deactivate(ctx context.Context, tokenID string) error
	DeactivateByUser(ctx context.Context, userID string) error
}

type tokenCodec interface {
	IssueAccess(u *domain.User) (string, error)
	IssueRefresh(u *domain.User, ttl time.Duration) (token, jti string, err error)
	Verify(token string) (*jwtinfra.Claims, error)
	AccessTTL() time.Duration
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleauth.Payload, error)
}

type service struct {
	userRepo    userStore
	sessionRepo sessionStore
	tokens      tokenCodec
	google      googleVerifier
	recorder    *activity.Recorder
	refreshTTL  time.Duration
	rememberTTL time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Tokens      tokenCodec
	Google      googleVerifier
	Recorder    *activity.Recorder
	RefreshTTL  time.Duration
	RememberTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:    deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		tokens:      deps.Tokens,
		google:      deps.Google,
		recorder:    deps.Recorder,
		refreshTTL:  deps.RefreshTTL,
		rememberTTL: deps.RememberTTL,
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.recorder.Record(ctx, email, "", domain.ActionLoginFailed, map[string]string{"reason": "unknown_email"})
		return nil, domain.E(domain.ErrUnauthorized, msgInvalidCredentials)
	}
	if !u.IsActive {
		s.recorder.Record(ctx, email, u.UserID, domain.ActionLoginFailed, map[string]string{"reason": "deactivated"})
		return nil, domain.E(domain.ErrUnauthorized, "Account deactivated.")
	}
	if !hash.Verify(req.Password, u.PasswordHash) {
		s.recorder.Record(ctx, email, u.UserID, domain.ActionLoginFailed, map[string]string{"reason": "bad_password"})
		return nil, domain.E(domain.ErrUnauthorized, msgInvalidCredentials)
	}

	now := time.Now().UTC()
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"last_login_at": now.Format(time.RFC3339)}); err != nil {
		slog.Warn("failed to update last_login", "user_id", u.UserID, "err", err)
	}
	u.LastLoginAt = &now

	pair, err := s.issuePair(ctx, u, req.RememberMe)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, email, u.UserID, domain.ActionLoginSuccess, nil)
	return &LoginResult{User: u, TokenPair: *pair}, nil
}

// LoginWithGoogle verifies the ID token and finds or creates the matching
// account. Google accounts arrive email-verified, so the OTP flow is skipped.
func (s *service) LoginWithGoogle(ctx context.Context, req domain.GoogleLoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	if s.google == nil {
		return nil, domain.E(domain.ErrBadRequest, "Google sign-in is not configured.")
	}
	payload, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		now := time.Now().UTC()
		u = &domain.User{
			UserID:        id.New(),
			Email:         email,
			Name:          payload.Name,
			EmailVerified: payload.EmailVerified,
			IsActive:      true,
			AuthProvider:  "google",
			GoogleSub:     payload.Sub,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return nil, err
		}
	} else if !u.IsActive {
		s.recorder.Record(ctx, email, u.UserID, domain.ActionLoginFailed, map[string]string{"reason": "deactivated"})
		return nil, domain.E(domain.ErrUnauthorized, "Account deactivated.")
	}

	pair, err := s.issuePair(ctx, u, false)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, email, u.UserID, domain.ActionLoginSuccess, map[string]string{"provider": "google"})
	return &LoginResult{User: u, TokenPair: *pair}, nil
}

// Refresh rotates the pair. The prior refresh token is not invalidated here:
// old and new both stay valid until natural expiry. The rotation is logged
// with the prior token-id so issuance chains stay traceable.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwtinfra.TokenTypeRefresh {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid token type.")
	}

	u, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, domain.E(domain.ErrUnauthorized, "Invalid or expired token.")
	}
	if !u.IsActive {
		return nil, domain.E(domain.ErrUnauthorized, "Account deactivated.")
	}

	// Inherit the extended lifetime of a remembered session when the prior
	// issuance is still on record.
	remembered := false
	if sess, err := s.sessionRepo.Get(ctx, claims.ID); err == nil {
		remembered = sess.Remembered
	}
	pair, err := s.issuePair(ctx, u, remembered)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, u.Email, u.UserID, domain.ActionTokenRefreshed, map[string]string{"rotated_from": claims.ID})
	return pair, nil
}

// Logout is best-effort: every internal failure is swallowed so the client
// always clears local state, and an invalid token is indistinguishable from
// a successful logout.
func (s *service) Logout(ctx context.Context, req domain.LogoutRequest) {
	claims, err := s.tokens.Verify(req.RefreshToken)
	if err != nil || claims.TokenType != jwtinfra.TokenTypeRefresh {
		return
	}
	if req.LogoutFromAllDevices {
		if err := s.sessionRepo.DeactivateByUser(ctx, claims.UserID); err != nil {
			slog.Warn("logout all devices failed", "user_id", claims.UserID, "err", err)
		}
	} else {
		if err := s.sessionRepo.Deactivate(ctx, claims.ID); err != nil {
			slog.Warn("logout failed", "token_id", claims.ID, "err", err)
		}
	}
	s.recorder.Record(ctx, claims.Email, claims.UserID, domain.ActionLogout, map[string]string{"all_devices": boolStr(req.LogoutFromAllDevices)})
}

func (s *service) issuePair(ctx context.Context, u *domain.User, remember bool) (*domain.TokenPair, error) {
	ttl := s.refreshTTL
	if remember {
		ttl = s.rememberTTL
	}
	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := s.tokens.IssueRefresh(u, ttl)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		TokenID:    jti,
		UserID:     u.UserID,
		Active:     true,
		Remembered: remember,
		ExpiresAt:  now.Add(ttl).Unix(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		slog.Warn("failed to record session", "user_id", u.UserID, "err", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
