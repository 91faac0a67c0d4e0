package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/programeryk/stateful-engagement-backend/models"
)

var db *gorm.DB

// InitDatabase establishes a connection to MySQL using configuration values and performs automatic migrations.
func InitDatabase(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()
	dsn := buildDSN(cfg)

	// Raise the slow-sql threshold to keep the log focused on real problems.
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var err error
	db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gLogger})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	// Recycle idle connections before the server-side wait_timeout does.
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// Ping at boot so network/auth problems surface now instead of on the
	// first request.
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	for _, model := range modelDefs {
		if err := db.AutoMigrate(model); err != nil {
			log.Fatalf("auto migration failed for %T: %v", model, err)
		}
	}

	if err := seedCatalog(db); err != nil {
		log.Fatalf("catalog seed failed: %v", err)
	}

	return db
}

// buildDSN assembles the MySQL DSN. The connection loc must stay UTC: check-in
// days are UTC calendar days, and the driver formats time.Time parameters in
// the connection loc before MySQL compares them against the DATE column. A
// local loc on a non-UTC host would shift UTC midnight into the previous day
// and the yesterday lookup would never match.
func buildDSN(cfg AppConfig) string {
	if cfg.DatabaseURI != "" {
		return cfg.DatabaseURI
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}

// seedCatalog inserts the default reward and tool catalogs when absent.
// Effects payloads are validated here, at load time, so a bad seed fails the
// boot instead of corrupting a transaction later.
func seedCatalog(db *gorm.DB) error {
	rewards := []models.Reward{
		{
			ID:          "streak_3",
			Title:       "3 Day streak",
			Description: "Reward for checking in 3 days in a row",
			Type:        models.RewardTypeStreak,
			Threshold:   3,
			Effects:     models.Effects{Loyalty: 50},
		},
		{
			ID:          "streak_7",
			Title:       "7 Day streak",
			Description: "Reward for checking in 7 days in a row",
			Type:        models.RewardTypeStreak,
			Threshold:   7,
			Effects:     models.Effects{Loyalty: 120, Energy: 10},
		},
	}
	tools := []models.ToolDefinition{
		{ID: "coffee", Name: "Coffee", Price: 10, Effects: models.Effects{Energy: 15, Fatigue: -10}},
		{ID: "nap", Name: "Power Nap", Price: 25, Effects: models.Effects{Fatigue: -30}},
		{ID: "snack", Name: "Snack", Price: 5, Effects: models.Effects{Energy: 5}},
	}

	for _, r := range rewards {
		if err := r.Effects.Validate(); err != nil {
			return fmt.Errorf("reward %s: %w", r.ID, err)
		}
		if err := db.Where("id = ?", r.ID).FirstOrCreate(&r).Error; err != nil {
			return err
		}
	}
	for _, t := range tools {
		if err := t.Effects.Validate(); err != nil {
			return fmt.Errorf("tool %s: %w", t.ID, err)
		}
		if err := db.Where("id = ?", t.ID).FirstOrCreate(&t).Error; err != nil {
			return err
		}
	}
	return nil
}
