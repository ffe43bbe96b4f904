package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/feirahub/feira-api/internal/config"
	"github.com/feirahub/feira-api/internal/domain/entity"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Identity
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Catalog
		&entity.Merchant{},
		&entity.Category{},
		&entity.Product{},

		// Orders
		&entity.Order{},
		&entity.OrderItem{},

		// Commission ledger
		&entity.CommissionPeriod{},
		&entity.Payment{},
		&entity.ReceiptClaim{},

		// System
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData seeds the database with default roles, permissions and
// the platform admin user
func SeedDefaultData(db *gorm.DB, log *zap.Logger) error {
	permissions := []entity.Permission{
		{Name: "manage-products", GuardName: "web"},
		{Name: "manage-orders", GuardName: "web"},
		{Name: "manage-commission", GuardName: "web"},
		{Name: "manage-merchants", GuardName: "web"},
		{Name: "manage-categories", GuardName: "web"},
		{Name: "view-reports", GuardName: "web"},
	}

	for i := range permissions {
		var existing entity.Permission
		if err := db.Where("name = ?", permissions[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&permissions[i]).Error; err != nil {
				log.Warn("failed to create permission", zap.String("name", permissions[i].Name), zap.Error(err))
			}
		}
	}

	var allPermissions []entity.Permission
	db.Find(&allPermissions)

	permsByName := func(names ...string) []entity.Permission {
		var out []entity.Permission
		for _, name := range names {
			for _, p := range allPermissions {
				if p.Name == name {
					out = append(out, p)
					break
				}
			}
		}
		return out
	}

	roles := []entity.Role{
		{Name: "admin", GuardName: "web", Permissions: allPermissions},
		{Name: "merchant", GuardName: "web", Permissions: permsByName("manage-products", "manage-orders", "manage-commission")},
		{Name: "customer", GuardName: "web"},
	}

	for i := range roles {
		var existing entity.Role
		if err := db.Where("name = ?", roles[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&roles[i]).Error; err != nil {
				log.Warn("failed to create role", zap.String("name", roles[i].Name), zap.Error(err))
			}
		}
	}

	seedAdminUser(db, log)

	log.Info("default data seeding completed")
	return nil
}

// seedAdminUser creates the platform admin when ADMIN_EMAIL and
// ADMIN_PASSWORD are set
func seedAdminUser(db *gorm.DB, log *zap.Logger) {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail == "" || adminPassword == "" {
		return
	}

	var existing entity.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		log.Warn("admin role missing, skipping admin user seed", zap.Error(err))
		return
	}

	if adminName == "" {
		adminName = "Platform Admin"
	}
	firstName := adminName
	lastName := ""
	for i, c := range adminName {
		if c == ' ' {
			firstName = adminName[:i]
			lastName = adminName[i+1:]
			break
		}
	}

	adminUser := entity.User{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     adminEmail,
		Password:  string(hashedPassword),
		Roles:     []entity.Role{adminRole},
	}
	if err := db.Create(&adminUser).Error; err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", adminEmail))
}
