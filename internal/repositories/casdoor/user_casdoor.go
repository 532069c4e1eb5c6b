package casdoor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/cache"
	"github.com/SAP-F-2025/onlinecourse-service/internal/config"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories"
)

// ErrInvalidClaims wraps auth.ErrInvalidToken so callers can treat it as any rejected token
var ErrInvalidClaims = fmt.Errorf("%w: missing casdoor user", auth.ErrInvalidToken)

// TokenParser verifies a Casdoor access token. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// ExternalUser is the identity asserted by a verified Casdoor token
type ExternalUser struct {
	ID          string
	Name        string
	DisplayName string
	Type        string
	IsAdmin     bool

	// ExpiresAt is the token expiry, zero when the token carries none
	ExpiresAt time.Time
}

// UserCasdoor maps Casdoor identities onto local accounts, creating the
// account the first time an external user is seen.
type UserCasdoor struct {
	parser   TokenParser
	users    repositories.UserRepository
	cache    *cache.CacheHelper
	cacheTTL time.Duration
}

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

func NewUserCasdoor(parser TokenParser, users repositories.UserRepository, cacheManager *cache.CacheManager) *UserCasdoor {
	return &UserCasdoor{
		parser:   parser,
		users:    users,
		cache:    cacheManager.User,
		cacheTTL: cache.UserCacheConfig.TTL,
	}
}

// Verify checks the token signature and extracts the external identity
func (u *UserCasdoor) Verify(token string) (*ExternalUser, error) {
	claims, err := u.parser.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if claims == nil || claims.User.Id == "" {
		return nil, ErrInvalidClaims
	}

	external := &ExternalUser{
		ID:          claims.User.Id,
		Name:        claims.User.Name,
		DisplayName: claims.User.DisplayName,
		Type:        claims.User.Type,
		IsAdmin:     claims.User.IsAdmin,
	}
	if claims.ExpiresAt != nil {
		external.ExpiresAt = claims.ExpiresAt.Time
	}
	return external, nil
}

// Resolve verifies token and returns the local account bound to it together
// with the token expiry
func (u *UserCasdoor) Resolve(ctx context.Context, token string) (*models.User, time.Time, error) {
	external, err := u.Verify(token)
	if err != nil {
		return nil, time.Time{}, err
	}

	var user models.User
	err = u.cache.CacheOrExecute(ctx, externalKey(external.ID), &user, u.cacheTTL, func() (interface{}, error) {
		return u.findOrCreate(ctx, external)
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return &user, external.ExpiresAt, nil
}

// findOrCreate runs on cache misses. An existing account picks up role
// changes made in Casdoor since it was last seen.
func (u *UserCasdoor) findOrCreate(ctx context.Context, external *ExternalUser) (*models.User, error) {
	user, err := u.users.GetByExternalID(ctx, nil, external.ID)
	if err == nil {
		if role := mapCasdoorRole(external); user.Role != role {
			if err := u.users.UpdateRole(ctx, nil, user.ID, role); err != nil {
				return nil, fmt.Errorf("failed to sync external user role: %w", err)
			}
			user.Role = role
		}
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up external user: %w", err)
	}

	externalID := external.ID
	user = &models.User{
		Username:   usernameFor(external),
		FirstName:  external.DisplayName,
		Role:       mapCasdoorRole(external),
		ExternalID: &externalID,
	}
	if err := u.users.Create(ctx, nil, user); err != nil {
		// Another request created the account concurrently
		if repositories.IsDuplicateError(err) {
			return u.users.GetByExternalID(ctx, nil, external.ID)
		}
		return nil, fmt.Errorf("failed to provision external user: %w", err)
	}
	return user, nil
}

// InvalidateCache drops the cached account of an external user
func (u *UserCasdoor) InvalidateCache(ctx context.Context, externalID string) {
	cache.SafeDelete(ctx, u.cache, externalKey(externalID))
}

func externalKey(externalID string) string {
	return "external:" + externalID
}

func usernameFor(external *ExternalUser) string {
	if external.Name != "" {
		return "casdoor:" + external.Name
	}
	return "casdoor:" + external.ID
}

func mapCasdoorRole(external *ExternalUser) models.UserRole {
	if external.IsAdmin {
		return models.RoleAdmin
	}
	switch strings.ToLower(external.Type) {
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleLearner
	}
}
