package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for the persisted refresh slot
	"encoding/hex"  // hex encoding of the digest
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // unique token ids
)

var (
	// ErrSigning is returned when a token cannot be signed, usually because
	// the signing key is not configured.
	ErrSigning = errors.New("token signing failed")
	// ErrVerification covers expiry, bad signature, wrong algorithm and
	// malformed input.
	ErrVerification = errors.New("token verification failed")
	// ErrTokenAbsent is returned for an empty token string.  Callers check
	// for absence before verifying, so this is not a verification failure.
	ErrTokenAbsent = errors.New("token absent")
)

// Identity is the user assertion carried by both token kinds.
type Identity struct {
	UserID   string
	UserName string
}

// Claims is the JWT payload.  "_id" and "userName" mirror the stored user.
type Claims struct {
	UserID   string `json:"_id"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// TokenConfig carries the two secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenService issues and verifies access/refresh JWTs.  It holds no state
// besides its configuration and is safe for concurrent use.
type TokenService struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs a short-lived assertion for the user.
func (s *TokenService) IssueAccessToken(userID, userName string) (string, error) {
	return s.sign(s.accessKey, s.accessTTL, userID, userName)
}

// IssueRefreshToken signs a long-lived assertion for the user.
func (s *TokenService) IssueRefreshToken(userID, userName string) (string, error) {
	return s.sign(s.refreshKey, s.refreshTTL, userID, userName)
}

// VerifyAccess verifies a token against the access key.
func (s *TokenService) VerifyAccess(token string) (Identity, error) {
	return s.Verify(token, s.accessKey)
}

// VerifyRefresh verifies a token against the refresh key.
func (s *TokenService) VerifyRefresh(token string) (Identity, error) {
	return s.Verify(token, s.refreshKey)
}

func (s *TokenService) sign(key []byte, ttl time.Duration, userID, userName string) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: signing key not configured", ErrSigning)
	}
	now := s.now().UTC()
	claims := Claims{
		UserID:   userID,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// Verify parses token with key and returns the identity it asserts.
func (s *TokenService) Verify(token string, key []byte) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrTokenAbsent
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return Identity{}, fmt.Errorf("%w: missing identity", ErrVerification)
	}
	return Identity{UserID: claims.UserID, UserName: claims.UserName}, nil
}

// HashRefreshToken returns the SHA-256 hex digest stored on the user in
// place of the raw refresh token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
