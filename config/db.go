package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"bookable-backend/models"
	"bookable-backend/utils"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "bookable_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// ConnectDatabase opens the MySQL connection, runs migrations, seeds a demo
// tenant when the database is empty, and returns the handle. Callers pass it
// down by constructor injection; there is no package-level DB.
func ConnectDatabase(logger zerolog.Logger) (*gorm.DB, error) {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if strings.EqualFold(utils.EnvOrDefault("DB_LOG_LEVEL", "warn"), "info") {
		level = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	SeedDatabase(db, logger)
	return db, nil
}

// Migrate runs AutoMigrate in parent-before-child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Business{},
		&models.Client{},
		&models.StaffMember{},
		&models.Resource{},
		&models.AvailabilityRule{},
		&models.Booking{},
		&models.Review{},
		&models.Hold{},
		&models.NotificationLog{},
		&models.WidgetKey{},
	)
}

// SeedDatabase creates a demo business with one resource when the businesses
// table is empty, so a fresh install has something to book against.
func SeedDatabase(db *gorm.DB, logger zerolog.Logger) {
	var count int64
	db.Model(&models.Business{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(utils.EnvOrDefault("SEED_ADMIN_PASSWORD", "changeme123")), bcrypt.DefaultCost)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to hash seed password, skipping seed")
		return
	}

	business := models.Business{
		Name:         "Demo Grooming Studio",
		Email:        "demo@bookable.local",
		PasswordHash: string(hash),
		Timezone:     "UTC",
	}
	if err := db.Create(&business).Error; err != nil {
		logger.Warn().Err(err).Msg("failed to seed demo business")
		return
	}

	resource := models.Resource{
		BusinessID:      business.ID,
		Kind:            models.ResourceKindService,
		Name:            "Full Groom",
		Description:     "Bath, cut and nail trim",
		PriceAmount:     6500,
		Currency:        "USD",
		Capacity:        1,
		DurationMinutes: 60,
		BufferMinutes:   15,
		Active:          true,
	}
	if err := db.Create(&resource).Error; err != nil {
		logger.Warn().Err(err).Msg("failed to seed demo resource")
		return
	}

	weekdays := []int{1, 2, 3, 4, 5}
	for _, wd := range weekdays {
		day := wd
		rule := models.AvailabilityRule{
			ResourceID: resource.ID,
			RuleType:   models.RuleTypeRecurring,
			Weekday:    &day,
			OpensAt:    9 * 60,
			ClosesAt:   17 * 60,
		}
		if err := db.Create(&rule).Error; err != nil {
			logger.Warn().Err(err).Int("weekday", wd).Msg("failed to seed availability rule")
		}
	}

	logger.Info().Msg("seeded demo business, resource and weekday hours")
}
