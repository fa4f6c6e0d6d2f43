package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
	})
}

func TestIssueAndVerify_Access(t *testing.T) {
	t.Parallel()
	s := newTestTokens()

	tok, err := s.IssueAccessToken("u1", "alice")
	require.NoError(t, err)

	id, err := s.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", UserName: "alice"}, id)
}

func TestIssue_AccessAndRefreshDiffer(t *testing.T) {
	t.Parallel()
	s := newTestTokens()

	access, err := s.IssueAccessToken("u1", "alice")
	require.NoError(t, err)
	refresh, err := s.IssueRefreshToken("u1", "alice")
	require.NoError(t, err)

	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	_, err = s.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrVerification, "refresh token must not pass as access token")
	_, err = s.VerifyRefresh(refresh)
	assert.NoError(t, err)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	s := newTestTokens()
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := s.IssueAccessToken("u1", "alice")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerify_WrongKeyAndMalformed(t *testing.T) {
	t.Parallel()
	s := newTestTokens()

	tok, err := s.IssueAccessToken("u1", "alice")
	require.NoError(t, err)

	_, err = s.Verify(tok, []byte("other"))
	assert.ErrorIs(t, err, ErrVerification)

	_, err = s.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	s := newTestTokens()

	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.VerifyAccess(raw)
	assert.ErrorIs(t, err, ErrVerification)
}

func TestVerify_AbsentIsNotVerificationError(t *testing.T) {
	t.Parallel()
	s := newTestTokens()

	_, err := s.VerifyAccess("  ")
	assert.ErrorIs(t, err, ErrTokenAbsent)
	assert.False(t, errors.Is(err, ErrVerification))
}

func TestIssue_MissingKey(t *testing.T) {
	t.Parallel()
	s := NewTokenService(TokenConfig{AccessTTL: time.Hour})

	_, err := s.IssueAccessToken("u1", "alice")
	assert.ErrorIs(t, err, ErrSigning)
}

func TestHashRefreshToken(t *testing.T) {
	t.Parallel()
	a := HashRefreshToken("abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashRefreshToken("abc"))
	assert.NotEqual(t, a, HashRefreshToken("abd"))
}

func TestPassword_RoundTrip(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestCookieFactory(t *testing.T) {
	t.Parallel()
	f := CookieFactory{Secure: true, AccessTTL: 24 * time.Hour, RefreshTTL: 15 * 24 * time.Hour}

	a := f.Access("tok")
	assert.Equal(t, AccessCookie, a.Name)
	assert.Equal(t, 86400, a.MaxAge)
	assert.True(t, a.HttpOnly)
	assert.True(t, a.Secure)

	r := f.Refresh("tok")
	assert.Equal(t, 15*86400, r.MaxAge)

	cleared := f.Clear()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}
