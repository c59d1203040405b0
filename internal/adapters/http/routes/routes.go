package routes

import (
	"pharmatch/internal/adapters/http/handlers"
	"pharmatch/internal/adapters/http/middleware"
	"pharmatch/internal/adapters/persistence/repositories"
	"pharmatch/internal/config"
	"pharmatch/internal/core/services"
	"pharmatch/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. It wires the full
// repository and service graph and returns the deadline scheduler so main
// can control its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.DeadlineScheduler {
	clk := clock.System()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	pharmacyRepo := repositories.NewPharmacyRepository(db)
	pharmacistRepo := repositories.NewPharmacistRepository(db)
	postingRepo := repositories.NewJobPostingRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	contractRepo := repositories.NewContractRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	penaltyRepo := repositories.NewPenaltyRepository(db)

	// Initialize services
	notifier := services.NewNotificationService()
	authService := services.NewAuthService(db, userRepo, pharmacyRepo, pharmacistRepo, cfg)
	standingService := services.NewAccountStandingService(db, pharmacyRepo, postingRepo)
	contractService := services.NewContractService(db, contractRepo, paymentRepo, pharmacyRepo, postingRepo, notifier, clk)
	penaltyService := services.NewPenaltyService(db, penaltyRepo, standingService, notifier, clk)
	paymentService := services.NewPaymentService(db, paymentRepo, contractRepo, contractService, penaltyService, notifier, clk)
	applicationService := services.NewApplicationService(db, applicationRepo, postingRepo, contractService, notifier, clk)
	scheduler := services.NewDeadlineScheduler(paymentRepo, contractRepo, paymentService, contractService, clk, cfg.Scheduler.ExpirySweepInterval)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, authService)
	contractHandler := handlers.NewContractHandler(contractService, authService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, authService)
	penaltyHandler := handlers.NewPenaltyHandler(penaltyService, standingService, authService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate-limited)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.AuthRateLimiter())
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	// Everything below requires a valid token
	apiV1.Use(middleware.AuthMiddleware(cfg))

	setupApplicationRoutes(apiV1, applicationHandler)
	setupContractRoutes(apiV1, contractHandler, paymentHandler)
	setupPaymentRoutes(apiV1, paymentHandler)
	setupPenaltyRoutes(apiV1, penaltyHandler)

	return scheduler
}

// setupApplicationRoutes configures application intake routes
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler) {
	// Pharmacist applies to an open posting
	router.Post("/applications", middleware.PharmacistOnly(), handler.Apply)

	// Pharmacy reviews its posting's applications
	router.Get("/postings/:id/applications", middleware.PharmacyOnly(), handler.ListByPosting)
	router.Post("/applications/:id/accept", middleware.PharmacyOnly(), handler.Accept)
	router.Post("/applications/:id/reject", middleware.PharmacyOnly(), handler.Reject)
}

// setupContractRoutes configures contract routes
func setupContractRoutes(router fiber.Router, handler *handlers.ContractHandler, paymentHandler *handlers.PaymentHandler) {
	// Reads are party-scoped inside the handler
	router.Get("/contracts", handler.ListMine)
	router.Get("/contracts/:id", handler.Get)
	router.Get("/contracts/:contract_id/payment", paymentHandler.GetByContract)

	// Offer decisions belong to the pharmacist
	router.Post("/contracts/:id/approve", middleware.PharmacistOnly(), handler.Approve)
	router.Post("/contracts/:id/reject", middleware.PharmacistOnly(), handler.Reject)

	// Manual completion, normally the nightly sweep's job
	router.Post("/contracts/:id/complete", middleware.AdminOnly(), handler.Complete)
}

// setupPaymentRoutes configures platform-fee payment routes
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	router.Post("/payments/:id/report", middleware.PharmacyOnly(), handler.Report)
	router.Post("/payments/:id/confirm", middleware.AdminOnly(), handler.Confirm)
	router.Post("/payments/:id/reset-report", middleware.AdminOnly(), handler.ResetReport)
}

// setupPenaltyRoutes configures penalty and account-standing routes
func setupPenaltyRoutes(router fiber.Router, handler *handlers.PenaltyHandler) {
	router.Get("/penalties", middleware.PharmacyOnly(), handler.ListMine)
	router.Post("/penalties/:id/appeal", middleware.PharmacyOnly(), handler.Appeal)

	router.Get("/penalties/:id", middleware.AdminOnly(), handler.Get)
	router.Post("/penalties/:id/resolve", middleware.AdminOnly(), handler.Resolve)
	router.Get("/pharmacies/:pharmacy_id/standing", middleware.AdminOnly(), handler.Standing)
	router.Post("/pharmacies/:pharmacy_id/reinstate", middleware.AdminOnly(), handler.Reinstate)
}
