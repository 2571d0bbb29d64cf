package domain

import "time"

// Action names recorded in the activity log. ActionOTPResent is also the
// substrate the resend rate limiter counts.
const (
	ActionOTPSent               = "otp_sent"
	ActionOTPResent             = "otp_resent"
	ActionOTPVerified           = "otp_verified"
	ActionOTPFailed             = "otp_failed"
	ActionRegistrationCompleted = "registration_completed"
	ActionLoginSuccess          = "login_success"
	ActionLoginFailed           = "login_failed"
	ActionTokenRefreshed        = "token_refreshed"
	ActionLogout                = "logout"
)

// ActivityLogEntry is an append-only audit record. Email is the partition
// the rate limiter queries by; UserID is empty for pre-account events.
type ActivityLogEntry struct {
	EntryID   string            `json:"id" dynamodbav:"entry_id"`
	Email     string            `json:"email" dynamodbav:"email"`
	UserID    string            `json:"user_id,omitempty" dynamodbav:"user_id"`
	Action    string            `json:"action" dynamodbav:"action"`
	Detail    map[string]string `json:"detail,omitempty" dynamodbav:"detail"`
	CreatedAt time.Time         `json:"created" dynamodbav:"created_at"`
}
