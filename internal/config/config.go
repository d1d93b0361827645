package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Cfg *AppConfig

// AppConfig holds all environment variables.
type AppConfig struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBName      string
	DBPassword  string
	DBSSLMode   string
	JWTSecret   string
	FrontendURL string

	StoreBackend  string // memory, postgres or redis
	StorePrefix   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HistoryLimit int
	MaxRounds    int
	SettleDelay  time.Duration
	SecureRandom bool
	RandomSeed   uint64

	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// Load reads environment variables (and .env if present)
func Load() *AppConfig {
	_ = godotenv.Load()

	Cfg = &AppConfig{
		Port:        os.Getenv("PORT"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBName:      os.Getenv("DB_NAME"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBSSLMode:   os.Getenv("DB_SSLMODE"),
		JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
		FrontendURL: os.Getenv("FRONTEND_URL"),

		StoreBackend:  strings.ToLower(os.Getenv("STORE_BACKEND")),
		StorePrefix:   os.Getenv("STORE_PREFIX"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		HistoryLimit: envInt("HISTORY_LIMIT", 200),
		MaxRounds:    envInt("MAX_ROUNDS", 10),
		SettleDelay:  time.Duration(envInt("SETTLE_DELAY_MS", 3000)) * time.Millisecond,
		SecureRandom: envBool("SECURE_RANDOM", true),
		RandomSeed:   uint64(envInt("RANDOM_SEED", 0)),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
	}
	if Cfg.Port == "" {
		Cfg.Port = "8080"
	}
	if Cfg.DBSSLMode == "" {
		Cfg.DBSSLMode = "disable"
	}
	if Cfg.StoreBackend == "" {
		Cfg.StoreBackend = "memory"
	}
	if Cfg.RedisAddr == "" {
		Cfg.RedisAddr = "localhost:6379"
	}
	return Cfg
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warningf("config: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warningf("config: %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}

// DatabaseConfigured reports whether enough DB_* settings are present to connect.
func (c *AppConfig) DatabaseConfigured() bool {
	return c.DBHost != "" && c.DBName != ""
}

var DB *gorm.DB

// InitDB opens the postgres connection with a gorm logger on stdout.
func InitDB(c *AppConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)

	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	DB = db
	return db, nil
}

// CORSMiddleware lets the stage frontend call the API.
func CORSMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if Cfg != nil && Cfg.FrontendURL != "" {
		cfg.AllowOrigins = strings.Split(Cfg.FrontendURL, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
