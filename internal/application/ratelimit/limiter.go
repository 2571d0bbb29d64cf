// Package ratelimit derives resend throttling decisions from the activity
// log. The limiter is stateless and performs no writes; the caller records
// the otp_resent event only after a successful send.
package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/go-retail-api/internal/domain"
)

// ActivityLog is the windowed query surface the limiter reads.
type ActivityLog interface {
	CountSince(ctx context.Context, email, action string, since time.Time) (int, error)
	MostRecentSince(ctx context.Context, email, action string, since time.Time) (*domain.ActivityLogEntry, error)
	OldestSince(ctx context.Context, email, action string, since time.Time) (*domain.ActivityLogEntry, error)
}

// Limiter enforces two independent resend checks: a rolling hourly ceiling
// and a short cooldown since the most recent resend. Both fail open when the
// log query errors, trading strictness for availability.
type Limiter struct {
	log      ActivityLog
	perHour  int
	cooldown time.Duration
	now      func() time.Time
}

func New(log ActivityLog, perHour int, cooldown time.Duration) *Limiter {
	return &Limiter{log: log, perHour: perHour, cooldown: cooldown, now: time.Now}
}

// CheckResend returns nil when the resend may proceed, or a
// *domain.RateLimitError carrying the seconds until it can.
func (l *Limiter) CheckResend(ctx context.Context, email string) error {
	now := l.now()
	windowStart := now.Add(-time.Hour)

	count, err := l.log.CountSince(ctx, email, domain.ActionOTPResent, windowStart)
	if err != nil {
		slog.Warn("rate limit count query failed, allowing", "email", email, "err", err)
	} else if count >= l.perHour {
		retryAfter := 60
		if oldest, err := l.log.OldestSince(ctx, email, domain.ActionOTPResent, windowStart); err == nil {
			retryAfter = secondsUntil(oldest.CreatedAt.Add(time.Hour), now)
		}
		return &domain.RateLimitError{
			RetryAfter: retryAfter,
			Reason:     "hourly resend limit reached",
		}
	}

	recent, err := l.log.MostRecentSince(ctx, email, domain.ActionOTPResent, now.Add(-l.cooldown))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("rate limit cooldown query failed, allowing", "email", email, "err", err)
		}
		return nil
	}
	return &domain.RateLimitError{
		RetryAfter: secondsUntil(recent.CreatedAt.Add(l.cooldown), now),
		Reason:     "resend cooldown active",
	}
}

func secondsUntil(t, now time.Time) int {
	s := int(math.Ceil(t.Sub(now).Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}
