package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/farellandr/eventbook/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	DefaultPromoterEmail = "promoter@eventbook.local"
)

type Config struct {
	Port          string
	Environment   string
	DBDriver      string
	DBPath        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	TokenTTL      time.Duration
	StaticRoot    string
	UploadDir     string
	MaxUploadMB   int64
	PromoterEmail string
	CORSOrigins   []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnvWithDefault("PORT", "8080"),
		Environment:   getEnvWithDefault("ENVIRONMENT", "development"),
		DBDriver:      strings.ToLower(getEnvWithDefault("DB_DRIVER", DriverSQLite)),
		DBPath:        getEnvWithDefault("DB_PATH", "eventbook.db"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StaticRoot:    getEnvWithDefault("STATIC_ROOT", "static"),
		UploadDir:     getEnvWithDefault("UPLOAD_DIR", "uploads"),
		PromoterEmail: getEnvWithDefault("PROMOTER_EMAIL", DefaultPromoterEmail),
	}

	ttl, err := time.ParseDuration(getEnvWithDefault("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	maxMB, err := strconv.ParseInt(getEnvWithDefault("MAX_UPLOAD_MB", "16"), 10, 64)
	if err != nil || maxMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q", os.Getenv("MAX_UPLOAD_MB"))
	}
	cfg.MaxUploadMB = maxMB

	for _, origin := range strings.Split(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o := strings.TrimRight(strings.TrimSpace(origin), "/"); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres, DriverMySQL:
		if cfg.DBHost == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("DB_HOST and DB_NAME are required for driver %s", cfg.DBDriver)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UploadPath is the directory on disk that event images are written to.
func (c *Config) UploadPath() string {
	return filepath.Join(c.StaticRoot, c.UploadDir)
}

func (c *Config) portOr(fallback string) string {
	if c.DBPort != "" {
		return c.DBPort
	}
	return fallback
}

// DSN is the connection string for the configured driver. MySQL reports
// matched rather than changed rows so an update that changes nothing still
// counts as found.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.portOr("5432"),
		)
	case DriverMySQL:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&clientFoundRows=true",
			c.DBUser, c.DBPassword, c.DBHost, c.portOr("3306"), c.DBName,
		)
	default:
		return c.DBPath + "?_busy_timeout=5000"
	}
}

func (c *Config) dialector() gorm.Dialector {
	switch c.DBDriver {
	case DriverPostgres:
		return postgres.Open(c.DSN())
	case DriverMySQL:
		return mysql.Open(c.DSN())
	default:
		return sqlite.Open(c.DSN())
	}
}

func InitDatabase(cfg *Config, log *slog.Logger) (*gorm.DB, error) {
	return OpenDatabase(cfg.dialector(), cfg.DBDriver == DriverSQLite, log)
}

// OpenDatabase opens the store behind dialector and migrates the schema.
// An embedded SQLite store is pinned to a single connection so statements
// from concurrent requests are serialized.
func OpenDatabase(dialector gorm.Dialector, singleConn bool, log *slog.Logger) (*gorm.DB, error) {
	gLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if singleConn {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Booking{}); err != nil {
		return nil, err
	}

	return db, nil
}
