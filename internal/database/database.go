package database

import (
	"manu4/config"
	"manu4/internal/domain"
	"manu4/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Equipment{},
		&models.ServiceOrder{},
		&models.Notification{},
		&models.NotificationSetting{},
		&models.PushSubscription{},
	)
}

// SeedAdmin creates the initial admin account if no user exists yet.
func SeedAdmin(db *gorm.DB, log *zap.Logger) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        "admin@manu4.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Warn("admin seed failed", zap.Error(err))
		return
	}
	log.Info("seeded initial admin account", zap.String("email", admin.Email))
}
