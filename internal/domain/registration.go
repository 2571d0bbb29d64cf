package domain

import "time"

// PendingRegistration holds an in-flight registration waiting for its
// one-time code. Keyed uniquely by normalized email; a new send replaces any
// previous unverified record. ExpiresAt doubles as the DynamoDB TTL.
type PendingRegistration struct {
	Email     string              `json:"email" dynamodbav:"email"`
	CodeHash  string              `json:"-" dynamodbav:"code_hash"`
	Payload   RegistrationPayload `json:"payload" dynamodbav:"payload"`
	Attempts  int                 `json:"attempts" dynamodbav:"attempts"`
	Verified  bool                `json:"verified" dynamodbav:"verified"`
	CreatedAt time.Time           `json:"created" dynamodbav:"created_at"`
	ExpiresAt int64               `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// RegistrationPayload is the sanitized registration data held until the code
// is verified. The password is stored only as a bcrypt hash.
type RegistrationPayload struct {
	Name         string  `json:"name" dynamodbav:"name"`
	PasswordHash string  `json:"-" dynamodbav:"password_hash"`
	Phone        *string `json:"phone,omitempty" dynamodbav:"phone"`
}

// IsExpired reports whether the record's window has elapsed at the given instant.
func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return p.ExpiresAt < now.Unix()
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,complexpwd"`
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Phone    *string `json:"phone"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}
