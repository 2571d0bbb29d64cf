// Package registration implements the two-phase, OTP-verified registration
// state machine: collect details -> pending code -> completed account.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-retail-api/internal/application/activity"
	"github.com/go-retail-api/internal/config"
	"github.com/go-retail-api/internal/domain"
	"github.com/go-retail-api/internal/pkg/hash"
	"github.com/go-retail-api/internal/pkg/id"
	"github.com/go-retail-api/internal/pkg/otp"
	"github.com/go-retail-api/internal/pkg/validate"
)

// Uniform message for any unverifiable code: absent record, expired record
// and wrong code are indistinguishable to the caller, so nothing leaks about
// which emails have a registration in flight.
const msgInvalidOrExpired = "Invalid or expired verification code."

type SendResult struct {
	// ExpiresIn is the verification window in seconds.
	ExpiresIn int `json:"expiresIn"`
}

type VerifyResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
}

type Service interface {
	SendOTP(ctx context.Context, req domain.RegisterRequest) (*SendResult, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error)
	ResendOTP(ctx context.Context, req domain.ResendOTPRequest) (*SendResult, error)
}

type registrationStore interface {
	Upsert(ctx context.Context, p *domain.PendingRegistration) error
	GetUnverifiedByEmail(ctx context.Context, email string) (*domain.PendingRegistration, error)
	IncrementAttempts(ctx context.Context, email string) error
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

type tokenIssuer interface {
	IssueAccess(u *domain.User) (string, error)
	IssueRefresh(u *domain.User, ttl time.Duration) (token, jti string, err error)
	AccessTTL() time.Duration
}

type resendLimiter interface {
	CheckResend(ctx context.Context, email string) error
}

type mailer interface {
	SendOTPEmail(to, code, name string) error
}

type smsSender interface {
	SendOTPSMS(ctx context.Context, to, code string) error
}

type service struct {
	regRepo     registrationStore
	userRepo    userStore
	sessionRepo sessionStore
	tokens      tokenIssuer
	limiter     resendLimiter
	mailer      mailer
	smsSender   smsSender
	recorder    *activity.Recorder
	policy      config.OTPPolicy
	refreshTTL  time.Duration
}

type ServiceDeps struct {
	RegistrationRepo registrationStore
	UserRepo         userStore
	SessionRepo      sessionStore
	Tokens           tokenIssuer
	Limiter          resendLimiter
	Mailer           mailer
	SMSSender        smsSender
	Recorder         *activity.Recorder
	Policy           config.OTPPolicy
	RefreshTTL       time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		regRepo:     deps.RegistrationRepo,
		userRepo:    deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		tokens:      deps.Tokens,
		limiter:     deps.Limiter,
		mailer:      deps.Mailer,
		smsSender:   deps.SMSSender,
		recorder:    deps.Recorder,
		policy:      deps.Policy,
		refreshTTL:  deps.RefreshTTL,
	}
}

// SendOTP validates the registration payload, rejects emails that already
// belong to an active account, and dispatches a fresh code. A live pending
// record means the caller must wait out the remaining window rather than
// mint codes by re-submitting.
func (s *service) SendOTP(ctx context.Context, req domain.RegisterRequest) (*SendResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	email := normalizeEmail(req.Email)

	if u, err := s.userRepo.GetByEmail(ctx, email); err == nil && u.IsActive {
		return nil, domain.E(domain.ErrConflict, "An account with this email already exists.")
	}

	if prior, err := s.regRepo.GetUnverifiedByEmail(ctx, email); err == nil {
		if !prior.IsExpired(time.Now()) {
			return nil, &domain.RateLimitError{
				RetryAfter: int(time.Until(time.Unix(prior.ExpiresAt, 0)).Seconds()) + 1,
				Reason:     "verification code already sent",
			}
		}
		// Stale record: the upsert below replaces it.
	}

	passwordHash, err := hash.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	payload := domain.RegistrationPayload{
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: passwordHash,
		Phone:        req.Phone,
	}
	if err := s.dispatchCode(ctx, email, payload); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, email, "", domain.ActionOTPSent, nil)
	return &SendResult{ExpiresIn: int(s.policy.Expiry.Seconds())}, nil
}

// VerifyOTP drives the otp_pending -> completed transition. The attempt
// ceiling is checked before the code comparison, so an exhausted record
// reports "start again" rather than "wrong code".
func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	email := normalizeEmail(req.Email)

	rec, err := s.regRepo.GetUnverifiedByEmail(ctx, email)
	if err != nil {
		return nil, domain.E(domain.ErrUnauthorized, msgInvalidOrExpired)
	}
	if rec.IsExpired(time.Now()) {
		s.deleteRecord(ctx, email)
		return nil, domain.E(domain.ErrUnauthorized, msgInvalidOrExpired)
	}
	if rec.Attempts >= s.policy.MaxAttempts {
		s.deleteRecord(ctx, email)
		return nil, domain.E(domain.ErrUnauthorized, "Maximum verification attempts exceeded. Please start registration again.")
	}
	if !hash.Verify(req.OTP, rec.CodeHash) {
		if err := s.regRepo.IncrementAttempts(ctx, email); err != nil {
			slog.Warn("failed to increment otp attempts", "email", email, "err", err)
		}
		s.recorder.Record(ctx, email, "", domain.ActionOTPFailed, nil)
		remaining := s.policy.MaxAttempts - rec.Attempts - 1
		return nil, domain.E(domain.ErrUnauthorized,
			fmt.Sprintf("Invalid verification code. %d attempts remaining.", remaining))
	}

	user, err := s.materialize(ctx, email, rec)
	if err != nil {
		return nil, err
	}
	if err := s.regRepo.MarkVerified(ctx, email); err != nil {
		// The grace TTL is the deletion schedule; a failed mark only delays cleanup.
		slog.Warn("failed to mark registration verified", "email", email, "err", err)
	}
	s.recorder.Record(ctx, email, user.UserID, domain.ActionOTPVerified, nil)
	s.recorder.Record(ctx, email, user.UserID, domain.ActionRegistrationCompleted, nil)

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := s.tokens.IssueRefresh(user, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		TokenID:   jti,
		UserID:    user.UserID,
		Active:    true,
		ExpiresAt: now.Add(s.refreshTTL).Unix(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		slog.Warn("failed to record session", "user_id", user.UserID, "err", err)
	}

	return &VerifyResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ResendOTP re-dispatches a code from the stored payload, subject to the
// sliding-window limiter. A fully expired record falls back to the details
// step instead of being refreshed.
func (s *service) ResendOTP(ctx context.Context, req domain.ResendOTPRequest) (*SendResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.E(domain.ErrBadRequest, err.Error())
	}
	email := normalizeEmail(req.Email)

	if err := s.limiter.CheckResend(ctx, email); err != nil {
		return nil, err
	}

	rec, err := s.regRepo.GetUnverifiedByEmail(ctx, email)
	if err != nil {
		return nil, domain.E(domain.ErrBadRequest, "No registration in progress for this email. Please start again.")
	}
	if rec.IsExpired(time.Now()) {
		s.deleteRecord(ctx, email)
		return nil, domain.E(domain.ErrBadRequest, "Your verification window has expired. Please start registration again.")
	}

	if err := s.dispatchCode(ctx, email, rec.Payload); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, email, "", domain.ActionOTPResent, nil)
	return &SendResult{ExpiresIn: int(s.policy.Expiry.Seconds())}, nil
}

// dispatchCode generates, hashes and stores a fresh code, then sends it.
// If the email send fails the just-written record is deleted, so no pending
// state survives without a dispatched code.
func (s *service) dispatchCode(ctx context.Context, email string, payload domain.RegistrationPayload) error {
	code, err := otp.Generate(s.policy.Digits)
	if err != nil {
		return err
	}
	codeHash, err := hash.Hash(code)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec := &domain.PendingRegistration{
		Email:     email,
		CodeHash:  codeHash,
		Payload:   payload,
		Attempts:  0,
		Verified:  false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.policy.Expiry).Unix(),
	}
	if err := s.regRepo.Upsert(ctx, rec); err != nil {
		return err
	}
	if err := s.mailer.SendOTPEmail(email, code, payload.Name); err != nil {
		s.deleteRecord(ctx, email)
		return fmt.Errorf("send verification email: %w", err)
	}
	if payload.Phone != nil && s.smsSender != nil {
		if err := s.smsSender.SendOTPSMS(ctx, *payload.Phone, code); err != nil {
			slog.Warn("otp sms delivery failed", "email", email, "err", err)
		}
	}
	return nil
}

// materialize creates the account from the stored payload. A race where an
// active account now exists cleans up the pending record and reports a
// conflict. A deactivated account is reclaimed in place under its existing
// user_id, so the email-index never holds two rows for one email.
func (s *service) materialize(ctx context.Context, email string, rec *domain.PendingRegistration) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		UserID:        id.New(),
		Email:         email,
		Name:          rec.Payload.Name,
		Phone:         rec.Payload.Phone,
		PasswordHash:  rec.Payload.PasswordHash,
		EmailVerified: true,
		IsActive:      true,
		AuthProvider:  "local",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if prior, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if prior.IsActive {
			s.deleteRecord(ctx, email)
			return nil, domain.E(domain.ErrConflict, "An account with this email already exists.")
		}
		user.UserID = prior.UserID
		user.CreatedAt = prior.CreatedAt
	}
	if err := s.userRepo.Put(ctx, user); err != nil {
		s.deleteRecord(ctx, email)
		return nil, err
	}
	return user, nil
}

func (s *service) deleteRecord(ctx context.Context, email string) {
	if err := s.regRepo.Delete(ctx, email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("failed to delete pending registration", "email", email, "err", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
