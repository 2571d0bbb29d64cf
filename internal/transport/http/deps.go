package http

import (
	"github.com/go-retail-api/internal/infrastructure/dynamo"
	googleauth "github.com/go-retail-api/internal/infrastructure/google"
	jwtinfra "github.com/go-retail-api/internal/infrastructure/jwt"
	s3infra "github.com/go-retail-api/internal/infrastructure/s3"
	"github.com/go-retail-api/internal/infrastructure/smtp"
	"github.com/go-retail-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. Mailer and
// JWTProvider are required; the remaining optional fields (S3Store, SMSSender,
// GoogleVerifier) may be nil and the corresponding features degrade gracefully.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	RegistrationRepo *dynamo.RegistrationRepo
	SessionRepo      *dynamo.SessionRepo
	ActivityRepo     *dynamo.ActivityRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	GoogleVerifier   *googleauth.Verifier
	JWTProvider      *jwtinfra.Provider
}
