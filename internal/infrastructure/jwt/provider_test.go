package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/go-retail-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, accessTTL time.Duration) *Provider {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderWithKeys(priv, "retail-api", "retail-clients", accessTTL, 7*24*time.Hour)
}

func testUser() *domain.User {
	return &domain.User{
		UserID:        "u1",
		Email:         "shopper@example.com",
		Name:          "Alex Shopper",
		EmailVerified: true,
	}
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	token, err := p.IssueAccess(testUser())
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "shopper@example.com", claims.Email)
	assert.Equal(t, "Alex Shopper", claims.Name)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "retail-api", claims.Issuer)
	assert.Empty(t, claims.ID) // jti is for refresh tokens only
}

func TestIssueRefresh_CarriesJTI(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	token, jti, err := p.IssueRefresh(testUser(), time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, jti, claims.ID)
	// refresh tokens don't carry profile claims
	assert.Empty(t, claims.Name)
}

func TestIssueRefresh_SuccessiveJTIsDiffer(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	_, jti1, err := p.IssueRefresh(testUser(), time.Hour)
	require.NoError(t, err)
	_, jti2, err := p.IssueRefresh(testUser(), time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, jti1, jti2)
}

func TestVerify_ExpiredToken(t *testing.T) {
	p := newTestProvider(t, -time.Minute) // issued already expired

	token, err := p.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = p.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	p := newTestProvider(t, 2*time.Second)

	token, err := p.IssueAccess(testUser())
	require.NoError(t, err)

	// a second before expiry the token is still accepted; no leeway is
	// configured, so the cutoff is the exp claim itself
	time.Sleep(time.Second)
	_, err = p.Verify(token)
	require.NoError(t, err)

	// a second past expiry it is rejected
	time.Sleep(2 * time.Second)
	_, err = p.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_Garbage(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	_, err := p.Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_WrongKeyPair(t *testing.T) {
	issuingProvider := newTestProvider(t, 15*time.Minute)
	verifyingProvider := newTestProvider(t, 15*time.Minute)

	token, err := issuingProvider.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = verifyingProvider.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_IssuerMismatch(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	issuing := NewProviderWithKeys(priv, "other-issuer", "retail-clients", 15*time.Minute, time.Hour)
	verifying := NewProviderWithKeys(priv, "retail-api", "retail-clients", 15*time.Minute, time.Hour)

	token, err := issuing.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_AudienceMismatch(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	issuing := NewProviderWithKeys(priv, "retail-api", "other-audience", 15*time.Minute, time.Hour)
	verifying := NewProviderWithKeys(priv, "retail-api", "retail-clients", 15*time.Minute, time.Hour)

	token, err := issuing.IssueAccess(testUser())
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_CrossTypeTokensStayDistinguishable(t *testing.T) {
	p := newTestProvider(t, 15*time.Minute)

	access, err := p.IssueAccess(testUser())
	require.NoError(t, err)
	refresh, _, err := p.IssueRefresh(testUser(), time.Hour)
	require.NoError(t, err)

	// both verify structurally; the type claim is what keeps them apart
	ac, err := p.Verify(access)
	require.NoError(t, err)
	rc, err := p.Verify(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, ac.TokenType)
	assert.Equal(t, TokenTypeRefresh, rc.TokenType)
}
