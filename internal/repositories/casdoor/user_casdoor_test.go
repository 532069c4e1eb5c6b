package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/onlinecourse-service/internal/cache"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/onlinecourse-service/pkg"
)

type fakeParser struct {
	claims map[string]*casdoorsdk.Claims
}

func (f *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	claims, ok := f.claims[token]
	if !ok {
		return nil, errors.New("signature is invalid")
	}
	return claims, nil
}

func newClaims(id, name, userType string, admin bool) *casdoorsdk.Claims {
	return &casdoorsdk.Claims{
		User: casdoorsdk.User{Id: id, Name: name, DisplayName: "Display " + name, Type: userType, IsAdmin: admin},
	}
}

func TestUserCasdoor_Resolve(t *testing.T) {
	db := pkg.NewTestDatabase(t)
	users := postgres.NewUserPostgreSQL(db)
	parser := &fakeParser{claims: map[string]*casdoorsdk.Claims{
		"learner-token": newClaims("ext-1", "ada", "normal-user", false),
		"admin-token":   newClaims("ext-2", "grace", "normal-user", true),
		"empty-token":   newClaims("", "nobody", "", false),
	}}
	resolver := NewUserCasdoor(parser, users, cache.NewCacheManager(nil))
	ctx := context.Background()

	first, expiresAt, err := resolver.Resolve(ctx, "learner-token")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first.ID == 0 || first.Username != "casdoor:ada" || first.Role != models.RoleLearner {
		t.Errorf("provisioned user = %+v", first)
	}
	if !expiresAt.IsZero() {
		t.Errorf("expiresAt = %v, want zero for a token without exp", expiresAt)
	}

	again, _, err := resolver.Resolve(ctx, "learner-token")
	if err != nil {
		t.Fatalf("Resolve() second call error = %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second resolve created a new account: %d != %d", again.ID, first.ID)
	}

	admin, _, err := resolver.Resolve(ctx, "admin-token")
	if err != nil {
		t.Fatalf("Resolve(admin) error = %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("admin role = %s", admin.Role)
	}

	if _, _, err := resolver.Resolve(ctx, "empty-token"); !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("Resolve(empty) error = %v, want ErrInvalidClaims", err)
	}
	if _, _, err := resolver.Resolve(ctx, "forged"); err == nil {
		t.Error("Resolve(forged) expected error")
	}
}

func TestUserCasdoor_ResolveExpiry(t *testing.T) {
	exp := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	var claims casdoorsdk.Claims
	raw := `{"id": "ext-9", "name": "linus", "exp": ` + strconv.FormatInt(exp.Unix(), 10) + `}`
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		t.Fatalf("claims: %v", err)
	}

	db := pkg.NewTestDatabase(t)
	resolver := NewUserCasdoor(&fakeParser{claims: map[string]*casdoorsdk.Claims{"t": &claims}}, postgres.NewUserPostgreSQL(db), cache.NewCacheManager(nil))

	_, expiresAt, err := resolver.Resolve(context.Background(), "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !expiresAt.Equal(exp) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, exp)
	}
}

func TestUserCasdoor_ResolveSyncsRole(t *testing.T) {
	db := pkg.NewTestDatabase(t)
	users := postgres.NewUserPostgreSQL(db)
	parser := &fakeParser{claims: map[string]*casdoorsdk.Claims{
		"t": newClaims("ext-5", "ken", "normal-user", false),
	}}
	resolver := NewUserCasdoor(parser, users, cache.NewCacheManager(nil))
	ctx := context.Background()

	first, _, err := resolver.Resolve(ctx, "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first.Role != models.RoleLearner {
		t.Fatalf("role = %s, want learner", first.Role)
	}

	// Promoted in Casdoor after the account was provisioned
	parser.claims["t"] = newClaims("ext-5", "ken", "normal-user", true)
	promoted, _, err := resolver.Resolve(ctx, "t")
	if err != nil {
		t.Fatalf("Resolve() after promotion error = %v", err)
	}
	if promoted.ID != first.ID || !promoted.IsAdmin() {
		t.Errorf("promoted user = %+v", promoted)
	}

	stored, err := users.GetByID(ctx, nil, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Role != models.RoleAdmin {
		t.Errorf("stored role = %s, want admin", stored.Role)
	}

	parser.claims["t"] = newClaims("ext-5", "ken", "normal-user", false)
	demoted, _, err := resolver.Resolve(ctx, "t")
	if err != nil {
		t.Fatalf("Resolve() after demotion error = %v", err)
	}
	if demoted.IsAdmin() {
		t.Errorf("demoted user kept admin role")
	}
}

func TestMapCasdoorRole(t *testing.T) {
	tests := []struct {
		name     string
		external ExternalUser
		want     models.UserRole
	}{
		{name: "default", external: ExternalUser{Type: "normal-user"}, want: models.RoleLearner},
		{name: "admin flag", external: ExternalUser{IsAdmin: true}, want: models.RoleAdmin},
		{name: "admin type", external: ExternalUser{Type: "Administrator"}, want: models.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapCasdoorRole(&tt.external); got != tt.want {
				t.Errorf("mapCasdoorRole() = %s, want %s", got, tt.want)
			}
		})
	}
}
