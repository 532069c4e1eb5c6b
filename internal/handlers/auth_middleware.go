package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

const identityContextKey = "identity"

// IdentityResolver turns a bearer token into the caller identity
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (auth.Identity, error)
}

// TokenResolver verifies locally issued session tokens
type TokenResolver struct {
	tokens *auth.TokenManager
}

func NewTokenResolver(tokens *auth.TokenManager) *TokenResolver {
	return &TokenResolver{tokens: tokens}
}

func (r *TokenResolver) Resolve(ctx context.Context, token string) (auth.Identity, error) {
	return r.tokens.Parse(ctx, token)
}

// UserResolver is satisfied by external identity providers that map a token to a
// local user. The returned time is the token expiry, zero when unknown.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, time.Time, error)
}

// ExternalResolver adapts a UserResolver, such as the Casdoor client, to
// IdentityResolver. Logged out tokens are rejected through the token manager's
// revocation store.
type ExternalResolver struct {
	users  UserResolver
	tokens *auth.TokenManager
}

func NewExternalResolver(users UserResolver, tokens *auth.TokenManager) *ExternalResolver {
	return &ExternalResolver{users: users, tokens: tokens}
}

func (r *ExternalResolver) Resolve(ctx context.Context, token string) (auth.Identity, error) {
	user, expiresAt, err := r.users.Resolve(ctx, token)
	if err != nil {
		return auth.Anonymous(), err
	}
	return r.tokens.ExternalIdentity(ctx, user, token, expiresAt)
}

// AuthMiddleware attaches the caller identity to the request. Every route sees an
// identity; routes that need a signed in user add RequireAuth or RequireAdmin.
type AuthMiddleware struct {
	resolver IdentityResolver
	logger   utils.Logger
}

func NewAuthMiddleware(resolver IdentityResolver, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, logger: logger}
}

// Authenticate never rejects; a missing or invalid token leaves the caller anonymous
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := auth.Anonymous()

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			resolved, err := am.resolver.Resolve(c.Request.Context(), token)
			switch {
			case err == nil:
				identity = resolved
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenRevoked):
				utils.LoggerFromContext(c, am.logger).Debug("Ignoring bearer token", "reason", err.Error())
			default:
				utils.LoggerFromContext(c, am.logger).Warn("Failed to resolve bearer token", "error", err)
			}
		}

		c.Set(identityContextKey, identity)
		if identity.IsAuthenticated() {
			c.Set("user_id", identity.UserID)
			c.Set("user_role", identity.Role)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFromContext(c).IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)
		if !identity.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Access denied",
				Details: "admin role required",
			})
			return
		}
		c.Next()
	}
}

// IdentityFromContext returns the identity stored by Authenticate, or anonymous
func IdentityFromContext(c *gin.Context) auth.Identity {
	if value, ok := c.Get(identityContextKey); ok {
		if identity, ok := value.(auth.Identity); ok {
			return identity
		}
	}
	return auth.Anonymous()
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
