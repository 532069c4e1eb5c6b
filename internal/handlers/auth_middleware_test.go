package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/models"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("secret", time.Hour, "onlinecourse-service", nil)
	token, _, err := tokens.Issue(&models.User{ID: 5, Username: "grace", Role: models.RoleLearner})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	am := NewAuthMiddleware(NewTokenResolver(tokens), logger)

	router := gin.New()
	router.Use(am.Authenticate())
	router.GET("/whoami", func(c *gin.Context) {
		identity := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})
	router.GET("/private", am.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/admin", am.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUserID float64
	}{
		{name: "anonymous", path: "/whoami", wantStatus: http.StatusOK},
		{name: "valid token", path: "/whoami", header: "Bearer " + token, wantStatus: http.StatusOK, wantUserID: 5},
		{name: "garbage token stays anonymous", path: "/whoami", header: "Bearer nope", wantStatus: http.StatusOK},
		{name: "private without token", path: "/private", wantStatus: http.StatusUnauthorized},
		{name: "private with token", path: "/private", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "admin without token", path: "/admin", wantStatus: http.StatusUnauthorized},
		{name: "admin as learner", path: "/admin", header: "Bearer " + token, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.path == "/whoami" {
				var body map[string]float64
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("body is not JSON: %v", err)
				}
				if body["user_id"] != tt.wantUserID {
					t.Errorf("user_id = %v, want %v", body["user_id"], tt.wantUserID)
				}
			}
		})
	}
}

type fakeUserResolver struct {
	user      *models.User
	expiresAt time.Time
	err       error
}

func (f fakeUserResolver) Resolve(context.Context, string) (*models.User, time.Time, error) {
	return f.user, f.expiresAt, f.err
}

func TestExternalResolver(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour, "onlinecourse-service", nil)
	expiresAt := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	resolver := NewExternalResolver(fakeUserResolver{
		user:      &models.User{ID: 3, Username: "casdoor:ada", Role: models.RoleAdmin},
		expiresAt: expiresAt,
	}, tokens)

	identity, err := resolver.Resolve(context.Background(), "t")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if identity.UserID != 3 || !identity.IsAdmin() {
		t.Errorf("identity = %+v", identity)
	}
	if identity.TokenID != auth.ExternalTokenID("t") || identity.ExpiresAt != expiresAt.Unix() {
		t.Errorf("session = (%q, %d), want (%q, %d)", identity.TokenID, identity.ExpiresAt, auth.ExternalTokenID("t"), expiresAt.Unix())
	}

	wantErr := errors.New("casdoor down")
	failing := NewExternalResolver(fakeUserResolver{err: wantErr}, tokens)
	identity, err = failing.Resolve(context.Background(), "t")
	if !errors.Is(err, wantErr) || identity.IsAuthenticated() {
		t.Errorf("Resolve() = (%+v, %v), want anonymous and %v", identity, err, wantErr)
	}
}

func TestExternalResolver_LogoutRevokesToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("secret", time.Hour, "onlinecourse-service", nil)
	resolver := NewExternalResolver(fakeUserResolver{
		user:      &models.User{ID: 4, Username: "casdoor:grace", Role: models.RoleLearner},
		expiresAt: time.Now().Add(7 * 24 * time.Hour),
	}, tokens)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	am := NewAuthMiddleware(resolver, logger)

	router := gin.New()
	router.Use(am.Authenticate())
	router.POST("/logout", am.RequireAuth(), func(c *gin.Context) {
		if err := tokens.Revoke(c.Request.Context(), IdentityFromContext(c)); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/private", am.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(method, path, token string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call(http.MethodGet, "/private", "casdoor-token"); code != http.StatusNoContent {
		t.Fatalf("before logout status = %d, want 204", code)
	}
	if code := call(http.MethodPost, "/logout", "casdoor-token"); code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", code)
	}
	if code := call(http.MethodGet, "/private", "casdoor-token"); code != http.StatusUnauthorized {
		t.Errorf("after logout status = %d, want 401", code)
	}
	if code := call(http.MethodGet, "/private", "other-casdoor-token"); code != http.StatusNoContent {
		t.Errorf("other token status = %d, want 204", code)
	}

	if _, err := resolver.Resolve(context.Background(), "casdoor-token"); !errors.Is(err, auth.ErrTokenRevoked) {
		t.Errorf("Resolve() after logout error = %v, want ErrTokenRevoked", err)
	}
}
