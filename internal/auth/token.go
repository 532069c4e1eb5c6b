package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims are the session claims signed into every access token
type Claims struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, issuer string, revoked RevocationStore) *TokenManager {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  issuer,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for user and returns it with its expiry
func (m *TokenManager) Issue(user *models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies signature, expiry and revocation and returns the caller identity
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Anonymous(), fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return Anonymous(), fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Anonymous(), fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return Anonymous(), ErrTokenRevoked
	}

	identity := Identity{
		UserID:   uint(userID),
		Username: claims.Username,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return identity, nil
}

// ExternalIdentity builds the identity for a user authenticated by an external
// provider. The raw token is fingerprinted so it can be revoked like a local one.
func (m *TokenManager) ExternalIdentity(ctx context.Context, user *models.User, token string, expiresAt time.Time) (Identity, error) {
	tokenID := ExternalTokenID(token)

	revoked, err := m.revoked.IsRevoked(ctx, tokenID)
	if err != nil {
		return Anonymous(), fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return Anonymous(), ErrTokenRevoked
	}

	identity := FromUser(user)
	if !identity.IsAuthenticated() {
		return Anonymous(), fmt.Errorf("%w: no local account", ErrInvalidToken)
	}
	identity.TokenID = tokenID
	if !expiresAt.IsZero() {
		identity.ExpiresAt = expiresAt.Unix()
	}
	return identity, nil
}

// ExternalTokenID is the revocation key of a token this service did not sign
func ExternalTokenID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "ext-" + hex.EncodeToString(sum[:])
}

// Revoke invalidates the identity's token until it would have expired anyway.
// Without a known expiry the token stays revoked for one session TTL.
func (m *TokenManager) Revoke(ctx context.Context, identity Identity) error {
	if identity.TokenID == "" {
		return nil
	}

	ttl := m.ttl
	if identity.ExpiresAt != 0 {
		ttl = time.Until(time.Unix(identity.ExpiresAt, 0))
	}
	if ttl <= 0 {
		return nil
	}

	return m.revoked.Revoke(ctx, identity.TokenID, ttl)
}
