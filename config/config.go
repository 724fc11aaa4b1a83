package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Proxies allowed to set X-Forwarded-For; empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Redis configuration.
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB      int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB      int           `mapstructure:"REDIS_QUEUE_DB"`
	DirectoryCacheTTL time.Duration `mapstructure:"DIRECTORY_CACHE_TTL"`
	LifecycleChannel  string        `mapstructure:"LIFECYCLE_CHANNEL"`
	WorkerConcurrency int           `mapstructure:"WORKER_CONCURRENCY"`

	// Single reference timezone for schedules and exceptions.
	Timezone string `mapstructure:"TIMEZONE"`

	// Matching and assignment policy.
	ScoreDistanceWeight float64 `mapstructure:"SCORE_DISTANCE_WEIGHT"`
	ScoreWorkloadWeight float64 `mapstructure:"SCORE_WORKLOAD_WEIGHT"`
	ScoreRatingWeight   float64 `mapstructure:"SCORE_RATING_WEIGHT"`
	AssignMaxAttempts   int     `mapstructure:"ASSIGN_MAX_ATTEMPTS"`

	// Booking lifecycle policy.
	CancelNoticeHours     int     `mapstructure:"CANCEL_NOTICE_HOURS"`
	PlatformFeeRate       float64 `mapstructure:"PLATFORM_FEE_RATE"`
	AutoAssignmentEnabled bool    `mapstructure:"AUTO_ASSIGNMENT_ENABLED"`
	AutoConfirmOnAssign   bool    `mapstructure:"AUTO_CONFIRM_ON_ASSIGN"`

	// Re-match sweep for bookings left unassigned.
	RematchSchedule  string `mapstructure:"REMATCH_SCHEDULE"`
	RematchBatchSize int    `mapstructure:"REMATCH_BATCH_SIZE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "servicehub")
	viper.SetDefault("JWT_SECRET", "")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DIRECTORY_CACHE_TTL", "5m")
	viper.SetDefault("LIFECYCLE_CHANNEL", "booking.lifecycle")
	viper.SetDefault("WORKER_CONCURRENCY", 10)

	viper.SetDefault("TIMEZONE", "UTC")

	viper.SetDefault("SCORE_DISTANCE_WEIGHT", 40.0)
	viper.SetDefault("SCORE_WORKLOAD_WEIGHT", 0.3)
	viper.SetDefault("SCORE_RATING_WEIGHT", 10.0)
	viper.SetDefault("ASSIGN_MAX_ATTEMPTS", 3)

	viper.SetDefault("CANCEL_NOTICE_HOURS", 24)
	viper.SetDefault("PLATFORM_FEE_RATE", 0.10)
	viper.SetDefault("AUTO_ASSIGNMENT_ENABLED", true)
	viper.SetDefault("AUTO_CONFIRM_ON_ASSIGN", false)

	viper.SetDefault("REMATCH_SCHEDULE", "@every 5m")
	viper.SetDefault("REMATCH_BATCH_SIZE", 50)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured reference timezone, falling back to UTC.
func Location() *time.Location {
	if AppConfig.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", AppConfig.Timezone)
		return time.UTC
	}
	return loc
}
