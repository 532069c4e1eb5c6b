package auth

import (
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
)

// Identity is the caller of a service operation. The zero value is anonymous.
type Identity struct {
	UserID   uint
	Username string
	Role     models.UserRole

	// TokenID and ExpiresAt describe the session token the identity came from
	TokenID   string
	ExpiresAt int64
}

func Anonymous() Identity {
	return Identity{}
}

// FromUser builds an identity for an already authenticated user
func FromUser(user *models.User) Identity {
	if user == nil {
		return Anonymous()
	}
	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

func (i Identity) IsAdmin() bool {
	return i.IsAuthenticated() && i.Role == models.RoleAdmin
}
