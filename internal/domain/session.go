package domain

import "time"

// Session records a refresh-token issuance. TokenID is the refresh token's
// jti claim. Logout flips Active; refresh does not consult the row, so a
// rotated-out token stays usable until its natural expiry.
type Session struct {
	TokenID    string    `json:"id" dynamodbav:"token_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Active     bool      `json:"active" dynamodbav:"active"`
	Remembered bool      `json:"remembered" dynamodbav:"remembered"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// TokenPair is the result of every successful authentication.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken         string `json:"refreshToken"`
	LogoutFromAllDevices bool   `json:"logoutFromAllDevices"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
