package handler

import (
	"donut-trade-backend/internal/adapter/http/middleware"
	redisStore "donut-trade-backend/internal/adapter/storage/redis"
	"donut-trade-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ListingSvc     ports.ListingService
	EscrowSvc      ports.EscrowService
	DepositSvc     ports.DepositService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep: verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	listingHandler := NewListingHandler(deps.ListingSvc, deps.EscrowSvc)
	v1.GET("/listings", rl("browse"), listingHandler.Browse)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	accountHandler := NewAccountHandler(deps.ReportingSvc)
	depositHandler := NewDepositHandler(deps.DepositSvc)

	listings := v1.Group("/listings", jwtAuth)
	{
		listings.POST("", rl("listings"), listingHandler.Create)
		listings.GET("/mine", rl("listings"), listingHandler.Mine)
		listings.GET("/:id", rl("browse"), listingHandler.Get)
		listings.DELETE("/:id", rl("listings"), listingHandler.Withdraw)
		listings.POST("/:id/purchase", rl("purchase"), listingHandler.Purchase)
	}

	account := v1.Group("/account", jwtAuth)
	{
		account.GET("/balance", rl("account"), accountHandler.GetBalance)
		account.GET("/history", rl("account"), accountHandler.History)
	}

	v1.GET("/transactions", jwtAuth, rl("account"), accountHandler.ListTransactions)

	deposits := v1.Group("/deposits", jwtAuth)
	{
		deposits.POST("", rl("deposits"), depositHandler.Request)
		deposits.GET("", rl("deposits"), depositHandler.ListMine)
	}

	// --- Admin routes (JWT + admin role) ---
	adminHandler := NewAdminHandler(deps.EscrowSvc, deps.DepositSvc, deps.ReportingSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireAdmin())
	{
		admin.GET("/transactions", rl("admin"), adminHandler.EscrowQueue)
		admin.POST("/transactions/:id/deliver", rl("admin"), adminHandler.Deliver)
		admin.POST("/transactions/:id/cancel", rl("admin"), adminHandler.Cancel)
		admin.GET("/deposits", rl("admin"), adminHandler.PendingDeposits)
		admin.POST("/deposits/:id/approve", rl("admin"), adminHandler.Approve)
		admin.POST("/deposits/:id/reject", rl("admin"), adminHandler.Reject)
		admin.GET("/audit", rl("admin"), adminHandler.AuditLog)
	}

	return r
}
