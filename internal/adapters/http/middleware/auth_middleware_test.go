package middleware

import (
	"context"
	"net/http/httptest"
	"testing"

	"loanlink-api/internal/adapters/persistence/models"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/config"
	"loanlink-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key"

type stubUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testApp(userRepo repositories.UserRepository, roles ...string) *fiber.App {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	app := fiber.New()
	handlers := []fiber.Handler{AuthMiddleware(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(userRepo, roles...))
	}
	app.Get("/protected", append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"email": c.Locals(LocalPrincipalEmail)})
	})...)

	app.Get("/scoped", AuthMiddleware(cfg), VerifyEmailScope(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func tokenFor(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(1, email, testSecret, 15)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{}}
	app := testApp(repo)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no token", "", fiber.StatusUnauthorized},
		{"malformed header", "Token abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + tokenFor(t, "alice@example.com"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestRequireRoleReadsRoleFromStore(t *testing.T) {
	repo := &stubUserRepo{users: map[string]*models.User{
		"admin@example.com":   {Email: "admin@example.com", Role: "Admin"},
		"user@example.com":    {Email: "user@example.com", Role: "User"},
		"manager@example.com": {Email: "manager@example.com", Role: "Manager"},
	}}
	app := testApp(repo, "Admin")

	tests := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{"admin allowed", "admin@example.com", fiber.StatusOK},
		{"plain user forbidden", "user@example.com", fiber.StatusForbidden},
		{"manager forbidden on admin route", "manager@example.com", fiber.StatusForbidden},
		{"no user record forbidden", "ghost@example.com", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.email))
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestRequireRoleSeesCurrentRoleNotTokenRole(t *testing.T) {
	// The token stays valid, but the store says Suspended now. The gate must
	// follow the store.
	repo := &stubUserRepo{users: map[string]*models.User{
		"alice@example.com": {Email: "alice@example.com", Role: "Admin"},
	}}
	app := testApp(repo, "Admin")
	token := tokenFor(t, "alice@example.com")

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected admin access before suspension, got %d", resp.StatusCode)
	}

	repo.users["alice@example.com"].Role = "Suspended"

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected suspension to take effect immediately, got %d", resp.StatusCode)
	}
}

func TestVerifyEmailScope(t *testing.T) {
	app := testApp(&stubUserRepo{})
	token := tokenFor(t, "alice@example.com")

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"own email", "?email=alice@example.com", fiber.StatusOK},
		{"no email param", "", fiber.StatusOK},
		{"someone else's email", "?email=bob@example.com", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/scoped"+tt.query, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}
