package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-retail-api/internal/config"
	"github.com/go-retail-api/internal/domain"
	"github.com/go-retail-api/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminator values. A refresh token must never pass where an
// access token is expected, and vice versa; callers branch on Claims.TokenType.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	TokenType     string `json:"token_type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 access/refresh token pairs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// NewProviderWithKeys builds a provider from in-memory keys. Used by tests.
func NewProviderWithKeys(priv *rsa.PrivateKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *Provider {
	return &Provider{
		privateKey: priv,
		publicKey:  &priv.PublicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// IssueAccess signs a short-lived access token carrying the user's identity claims.
func (p *Provider) IssueAccess(u *domain.User) (string, error) {
	return p.sign(Claims{
		UserID:        u.UserID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		TokenType:     TokenTypeAccess,
	}, p.accessTTL)
}

// IssueRefresh signs a refresh token and returns it with its jti, which the
// session service records and rotation logging links back to.
func (p *Provider) IssueRefresh(u *domain.User, ttl time.Duration) (token, jti string, err error) {
	if ttl <= 0 {
		ttl = p.refreshTTL
	}
	jti = id.New()
	token, err = p.sign(Claims{
		UserID:    u.UserID,
		Email:     u.Email,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: jti,
		},
	}, ttl)
	return token, jti, err
}

func (p *Provider) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.Issuer = p.issuer
	claims.Audience = jwt.ClaimStrings{p.audience}
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.IssuedAt = jwt.NewNumericDate(now)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// Verify fails closed: any signature, expiry, issuer or audience problem
// yields domain.ErrUnauthorized with no partial claims. A valid token still
// carries its TokenType, which the caller must check — a well-formed token
// of the wrong type is a different failure from a malformed one.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	},
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("unknown token type: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}
