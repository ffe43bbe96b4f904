package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feirahub/feira-api/internal/application/service"
	"github.com/feirahub/feira-api/internal/config"
	"github.com/feirahub/feira-api/internal/infrastructure/database"
	"github.com/feirahub/feira-api/internal/infrastructure/repository"
	"github.com/feirahub/feira-api/internal/presentation/http/handler"
	"github.com/feirahub/feira-api/internal/presentation/http/routes"
	"github.com/feirahub/feira-api/pkg/events"
	"github.com/feirahub/feira-api/pkg/oauth"
	"github.com/feirahub/feira-api/pkg/pix"
	"github.com/feirahub/feira-api/pkg/storage"
	"github.com/feirahub/feira-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Seed default data
	if err := database.SeedDefaultData(db, logger); err != nil {
		logger.Warn("failed to seed default data", zap.Error(err))
	}

	commissionRate, err := decimal.NewFromString(cfg.Commission.Rate)
	if err != nil {
		logger.Fatal("invalid commission rate", zap.String("rate", cfg.Commission.Rate), zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	periodRepo := repository.NewCommissionPeriodRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	claimRepo := repository.NewReceiptClaimRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Shared infrastructure
	uploader := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL, cfg.Storage.UploadMaxSize)
	publisher := events.NewLogPublisher(logger)
	pixGenerator := pix.NewPassthroughGenerator()

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	merchantService := service.NewMerchantService(merchantRepo, uploader)
	productService := service.NewProductService(productRepo, categoryRepo, uploader)
	categoryService := service.NewCategoryService(categoryRepo)
	commissionService := service.NewCommissionService(orderRepo, periodRepo, paymentRepo, claimRepo, merchantRepo, publisher, commissionRate)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, productRepo, merchantRepo, commissionService, pixGenerator, publisher)
	reportService := service.NewReportService(reportRepo, merchantRepo, periodRepo, paymentRepo, claimRepo, commissionService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:            handler.NewAuthHandler(authService, googleOAuthService),
		Merchant:        handler.NewMerchantHandler(merchantService, authService),
		Product:         handler.NewProductHandler(productService, merchantService),
		Category:        handler.NewCategoryHandler(categoryService),
		Order:           handler.NewOrderHandler(orderService, merchantService),
		Commission:      handler.NewCommissionHandler(commissionService, merchantService, uploader),
		AdminCommission: handler.NewAdminCommissionHandler(commissionService, reportService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          logger,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
