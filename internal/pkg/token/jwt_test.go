package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewJWTService("secret", 10*time.Hour)

	tok, err := svc.Issue(Identity{Id: "665a4d99285fddae50a0d5b1", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(tok, ".")))

	identity, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "665a4d99285fddae50a0d5b1", identity.Id)
	assert.Equal(t, "bob@example.com", identity.Email)
}

func TestTokenCarriesTenHourExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	svc := NewJWTService("secret", 10*time.Hour, WithClock(func() time.Time { return issuedAt }))

	tok, err := svc.Issue(Identity{Id: "u1", Email: "a@b.io"})
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(10*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	now := time.Now()
	issuer := NewJWTService("secret", time.Hour, WithClock(func() time.Time { return now.Add(-2 * time.Hour) }))
	verifier := NewJWTService("secret", time.Hour)

	tok, err := issuer.Issue(Identity{Id: "u1", Email: "a@b.io"})
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	other := NewJWTService("another-secret", time.Hour)

	foreign, err := other.Issue(Identity{Id: "u1", Email: "a@b.io"})
	require.NoError(t, err)

	noSubject, err := svc.Issue(Identity{Email: "a@b.io"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong signature", foreign},
		{"missing id", noSubject},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.NotErrorIs(t, err, ErrExpired)
		})
	}
}
