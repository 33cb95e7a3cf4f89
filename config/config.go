package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port    string
		BaseURL string `mapstructure:"base_url"` // public URL used in embed snippets and email links
	}
	Database struct {
		DSN string // "memory" or a SQLite file path
	}
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
	}
	Email struct {
		APIKey         string `mapstructure:"api_key"` // Resend API key, usually via RESEND_API_KEY
		From           string
		DigestSchedule string `mapstructure:"digest_schedule"` // cron spec for the weekly digest
	}
	// Tiers maps a subscription tier name to its monthly submission limit.
	Tiers map[string]int `mapstructure:"tiers"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// DefaultTier is the tier assigned to newly registered accounts.
const DefaultTier = "free"

// LoadConfig loads configuration from config.yaml and environment variables.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.dsn", "formharbor.db")
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("email.from", "FormHarbor <notifications@formharbor.app>")
	viper.SetDefault("email.digest_schedule", "0 9 * * MON")
	viper.SetDefault("tiers", map[string]int{
		"free":       25,
		"pro":        100,
		"enterprise": 999999, // sentinel: effectively unlimited
	})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration: %v", err)
	}

	// Environment variable overrides.
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by SERVER_PORT: %s", port)
	}
	if secret := os.Getenv("AUTH_JWT_SECRET"); secret != "" {
		AppConfig.Auth.JWTSecret = secret
	}
	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		AppConfig.Email.APIKey = key
	}

	if AppConfig.Auth.JWTSecret == "" {
		log.Println("WARN: [Config] No JWT secret configured (auth.jwt_secret / AUTH_JWT_SECRET). Using an insecure development default.")
		AppConfig.Auth.JWTSecret = "dev-only-insecure-secret"
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}

// LimitForTier returns the monthly submission limit configured for a tier.
// The second return value is false for tiers absent from the catalog.
func LimitForTier(tier string) (int, bool) {
	limit, ok := AppConfig.Tiers[tier]
	return limit, ok
}
