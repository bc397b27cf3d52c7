package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
)

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", "storefront-service", time.Hour)

	token, expiresAt, err := issuer.Issue("admin-1", "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "storefront-service", claims.Issuer)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", "storefront-service", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue("admin-1", "alice")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", "storefront-service", time.Hour)
	other := NewTokenIssuer("other", "storefront-service", time.Hour)
	foreign := NewTokenIssuer("s3cret", "someone-else", time.Hour)

	wrongKey, _, err := other.Issue("admin-1", "alice")
	require.NoError(t, err)
	wrongIssuer, _, err := foreign.Issue("admin-1", "alice")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AdminID: "admin-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AdminID:          "admin-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "storefront-service"},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong key", wrongKey},
		{"wrong issuer", wrongIssuer},
		{"alg none", none},
		{"no expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.ErrorIs(t, err, domain.ErrAuth)
		})
	}
}

func TestTokenIssuer_IssueRequiresAdminID(t *testing.T) {
	_, _, err := NewTokenIssuer("s3cret", "x", 0).Issue("", "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
