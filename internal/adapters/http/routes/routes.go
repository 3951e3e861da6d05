package routes

import (
	"loanlink-api/internal/adapters/http/handlers"
	"loanlink-api/internal/adapters/http/middleware"
	"loanlink-api/internal/adapters/persistence/repositories"
	"loanlink-api/internal/config"
	"loanlink-api/internal/core/domain"
	"loanlink-api/internal/core/services"
	"loanlink-api/internal/pkg/checkout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	loanRepo := repositories.NewLoanProductRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Payment processor client
	checkoutClient := checkout.NewClient(cfg.Checkout.BaseURL, cfg.Checkout.SecretKey)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	loanService := services.NewLoanService(loanRepo)
	appService := services.NewApplicationService(appRepo, loanRepo)
	paymentService := services.NewPaymentService(paymentRepo, appRepo, checkoutClient, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	loanHandler := handlers.NewLoanHandler(loanService)
	appHandler := handlers.NewApplicationHandler(appService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Tier helpers. Authentication always runs before the role check and the
	// role check reads the store, not the token.
	authenticated := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RequireRole(userRepo, string(domain.RoleAdmin))
	staffOnly := middleware.RequireRole(userRepo, string(domain.RoleManager), string(domain.RoleAdmin))

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authenticated, authHandler.Logout)
	auth.Get("/me", authenticated, authHandler.Me)

	// User management routes (Admin only)
	users := app.Group("/users", authenticated, adminOnly)
	users.Get("/", userHandler.ListUsers)
	users.Patch("/suspend/:id", userHandler.Suspend)
	users.Patch("/:id", userHandler.SetRole)

	// Loan product routes (public read, staff write)
	app.Get("/loans", loanHandler.List)
	app.Get("/loans/:id", loanHandler.Get)
	app.Post("/loans", authenticated, staffOnly, loanHandler.Create)
	app.Put("/loans/:id", authenticated, staffOnly, loanHandler.Update)
	app.Delete("/loans/:id", authenticated, adminOnly, loanHandler.Delete)

	// Loan application routes
	app.Post("/applications", authenticated, appHandler.Submit)
	app.Get("/applications", authenticated, middleware.VerifyEmailScope(), appHandler.ListMine)
	app.Get("/applications/all", authenticated, staffOnly, appHandler.ListAll)
	app.Patch("/applications/:id/status", authenticated, staffOnly, appHandler.UpdateStatus)
	app.Delete("/applications/:id", authenticated, appHandler.Cancel)

	// Payment routes. The success callback is public: the redirect back from
	// the hosted checkout page carries no auth, and the handler trusts only
	// what the processor says about the session.
	app.Post("/payment-checkout-session", authenticated, paymentHandler.CreateCheckoutSession)
	app.Patch("/payment-success", paymentHandler.PaymentSuccess)
	app.Get("/payments", authenticated, middleware.VerifyEmailScope(), paymentHandler.ListMine)
	app.Get("/payments/all", authenticated, adminOnly, paymentHandler.ListAll)
}
