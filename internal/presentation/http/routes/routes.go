package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/feirahub/feira-api/internal/config"
	domainRepo "github.com/feirahub/feira-api/internal/domain/repository"
	"github.com/feirahub/feira-api/internal/presentation/http/handler"
	"github.com/feirahub/feira-api/internal/presentation/http/middleware"
	"github.com/feirahub/feira-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth            *handler.AuthHandler
	Merchant        *handler.MerchantHandler
	Product         *handler.ProductHandler
	Category        *handler.CategoryHandler
	Order           *handler.OrderHandler
	Commission      *handler.CommissionHandler
	AdminCommission *handler.AdminCommissionHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.Static("/uploads", "./uploads")

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h, deps)
		registerPublicRoutes(v1, h, deps)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rps := float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration)
		rateLimiter := middleware.NewUserRateLimiter(rps, deps.Cfg.RateLimit.Requests)
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleLogin)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

// registerPublicRoutes covers the storefront browsing surface. Optional auth
// lets admins see inactive merchants in the same listing endpoint.
func registerPublicRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	public := v1.Group("")
	public.Use(middleware.OptionalAuthMiddleware(deps.JWTManager))
	{
		public.GET("/merchants", h.Merchant.List)
		public.GET("/merchants/:slug", h.Merchant.Get)
		public.GET("/products", h.Product.List)
		public.GET("/products/:slug", h.Product.Get)
		public.GET("/categories", h.Category.List)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	registerMerchantRoutes(protected, h)
	registerProductRoutes(protected, h)
	registerCategoryRoutes(protected, h)
	registerOrderRoutes(protected, h, deps)
	registerCommissionRoutes(protected, h, deps)
	registerAdminCommissionRoutes(protected, h)
}

func registerMerchantRoutes(protected *gin.RouterGroup, h *Handlers) {
	merchants := protected.Group("/merchants")
	{
		merchants.POST("", h.Merchant.Create)
		merchants.GET("/me", h.Merchant.Me)
		merchants.PUT("/me", h.Merchant.Update)
		merchants.POST("/me/logo", h.Merchant.UploadLogo)
		merchants.DELETE("/:id", middleware.RequireRole("admin"), h.Merchant.Deactivate)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	products.Use(middleware.RequirePermission("manage-products"))
	{
		products.POST("", h.Product.Create)
		products.PUT("/:slug", h.Product.Update)
		products.DELETE("/:slug", h.Product.Delete)
		products.POST("/:slug/image", h.Product.UploadImage)
	}
}

func registerCategoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	categories := protected.Group("/categories")
	categories.Use(middleware.RequirePermission("manage-categories"))
	{
		categories.POST("", h.Category.Create)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		// Checkout requires an idempotency key so a retried submit
		// cannot create a second order
		orders.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Order.Checkout)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id/status", h.Order.UpdateStatus)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.GET("/:id/pix", h.Order.Pix)
		orders.POST("/:id/payment/mark-paid", h.Order.MarkPaid)
		orders.POST("/:id/payment/confirm", middleware.RequireRole("merchant", "admin"), h.Order.ConfirmPayment)
		orders.POST("/:id/payment/reject", middleware.RequireRole("merchant", "admin"), h.Order.RejectPayment)
	}
}

func registerCommissionRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	commission := protected.Group("/commission")
	commission.Use(middleware.RequireRole("merchant"))
	{
		commission.GET("/balance", h.Commission.Balance)
		commission.GET("/periods", h.Commission.Periods)
		commission.GET("/payments", h.Commission.Payments)
		commission.GET("/claims", h.Commission.Claims)
		// Claim submission is idempotency-keyed for the same reason as
		// checkout: a retried upload must not queue two claims
		commission.POST("/claims", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Commission.SubmitClaim)
	}
}

func registerAdminCommissionRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin/commission")
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.GET("/overview", h.AdminCommission.Overview)
		admin.GET("/top-merchants", h.AdminCommission.TopMerchants)
		admin.GET("/export", h.AdminCommission.Export)
		admin.GET("/claims", h.AdminCommission.PendingClaims)
		admin.POST("/claims/:id/resolve", h.AdminCommission.ResolveClaim)
		admin.POST("/payments", h.AdminCommission.RegisterPayment)
		admin.POST("/accrue", h.AdminCommission.Accrue)
		admin.GET("/merchants/:id/balance", h.AdminCommission.MerchantBalance)
		admin.GET("/merchants/:id/payments", h.AdminCommission.MerchantPayments)
		admin.GET("/merchants/:id/statement", h.AdminCommission.MerchantStatement)
	}
}
