package middleware

import (
	"strings"

	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/config"
	"loanlink-api/internal/pkg/jwt"
	"loanlink-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID         = "userID"
	LocalPrincipalEmail = "principalEmail"
)

// AuthMiddleware verifies the access token and binds the principal's email to
// the request. It proves identity only; the role check happens separately and
// only on routes that ask for it.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Bind principal to the request
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalPrincipalEmail, claims.Email)

		return c.Next()
	}
}

// RequireRole authorizes the request against the user's CURRENT role in the
// store, looked up by the principal's email on every request. The token never
// carries a role claim, so a role change or suspension takes effect on the
// next request, not at the next token refresh.
func RequireRole(userRepo repositories.UserRepository, allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := c.Locals(LocalPrincipalEmail).(string)
		if !ok || email == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		user, err := userRepo.GetByEmail(c.Context(), email)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Forbidden(c, "Forbidden access")
			}
			return response.InternalServerError(c, "Failed to verify permissions")
		}

		for _, allowed := range allowedRoles {
			if user.Role == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Forbidden access")
	}
}

// VerifyEmailScope rejects requests whose email query parameter names someone
// other than the authenticated principal. Routes that filter a collection by
// email use this to stop one user reading another's records.
func VerifyEmailScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := c.Locals(LocalPrincipalEmail).(string)
		if !ok || email == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		requested := c.Query("email")
		if requested != "" && requested != email {
			return response.Forbidden(c, "Unauthorized Access")
		}

		return c.Next()
	}
}
