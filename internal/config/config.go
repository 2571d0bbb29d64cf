package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTIssuer         string
	JWTAudience       string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	// RememberMeTTL replaces RefreshTokenTTL when the login request sets remember_me.
	RememberMeTTL time.Duration

	OTP OTPPolicy

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	GoogleClientID string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                string
	PendingRegistrations string
	Sessions             string
	ActivityLog          string
}

// OTPPolicy is the canonical one-time-code policy applied to every
// registration entry point.
type OTPPolicy struct {
	Digits         int
	Expiry         time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
	ResendPerHour  int
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                getEnv("DYNAMO_TABLE_USERS", "users"),
			PendingRegistrations: getEnv("DYNAMO_TABLE_PENDING_REGISTRATIONS", "pending_registrations"),
			Sessions:             getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			ActivityLog:          getEnv("DYNAMO_TABLE_ACTIVITY_LOG", "activity_log"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "retail-api-avatars"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTIssuer:         getEnv("JWT_ISSUER", "retail-api"),
		JWTAudience:       getEnv("JWT_AUDIENCE", "retail-app"),
		AccessTokenTTL:    getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RememberMeTTL:     getEnvDuration("REMEMBER_ME_TTL", 30*24*time.Hour),

		OTP: OTPPolicy{
			Digits:         getEnvInt("OTP_DIGITS", 6),
			Expiry:         getEnvDuration("OTP_EXPIRY", 10*time.Minute),
			MaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
			ResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
			ResendPerHour:  getEnvInt("OTP_RESEND_PER_HOUR", 3),
		},

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsDevelopment reports whether the app runs in development mode.
// Internal error details reach clients only in development.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
