package domain

import "time"

type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	Email         string     `json:"email" dynamodbav:"email"`
	Name          string     `json:"name" dynamodbav:"name"`
	Phone         *string    `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	EmailVerified bool       `json:"email_verified" dynamodbav:"email_verified"`
	IsActive      bool       `json:"is_active" dynamodbav:"is_active"`
	AvatarKey     string     `json:"-" dynamodbav:"avatar_key"`
	AvatarURL     string     `json:"avatar_url,omitempty" dynamodbav:"-"`
	AuthProvider  string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub     string     `json:"-" dynamodbav:"google_sub"`
	LastLoginAt   *time.Time `json:"last_login,omitempty" dynamodbav:"last_login_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type UpdateProfileRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone        *string `json:"phone"`
	AvatarBase64 *string `json:"avatar_base64"`
}
