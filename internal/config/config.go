package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Shiprocket  ShiprocketConfig
	Payment     PaymentConfig
	Shipping    ShippingConfig
	Stream      StreamConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type ShiprocketConfig struct {
	BaseURL        string
	Email          string
	Password       string
	PickupPincode  string
	PickupLocation string
	Timeout        time.Duration
}

type PaymentConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
}

type ShippingConfig struct {
	FreeThreshold float64
	FlatFee       float64
}

type StreamConfig struct {
	PollInterval time.Duration
	MaxLifetime  time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHIPROCKET_BASE_URL", "https://apiv2.shiprocket.in/v1/external")
	viper.SetDefault("SHIPROCKET_TIMEOUT_SECONDS", "10")
	viper.SetDefault("FREE_SHIPPING_THRESHOLD", "999")
	viper.SetDefault("FLAT_SHIPPING_FEE", "49")
	viper.SetDefault("STREAM_POLL_SECONDS", "30")
	viper.SetDefault("STREAM_MAX_MINUTES", "10")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:           getEnvOrViper("DB_HOST", "localhost"),
			Port:           getEnvOrViper("DB_PORT", "5432"),
			User:           getEnvOrViper("DB_USER", "postgres"),
			Password:       getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:         getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:        getEnvOrViper("DB_SSLMODE", "disable"),
			MigrationsPath: getEnvOrViper("DB_MIGRATIONS_PATH", "migrations"),
		},
		Shiprocket: ShiprocketConfig{
			BaseURL:        getEnvOrViper("SHIPROCKET_BASE_URL", "https://apiv2.shiprocket.in/v1/external"),
			Email:          getEnvOrViper("SHIPROCKET_EMAIL", ""),
			Password:       getEnvOrViper("SHIPROCKET_PASSWORD", ""),
			PickupPincode:  getEnvOrViper("SHIPROCKET_PICKUP_PINCODE", "110001"),
			PickupLocation: getEnvOrViper("SHIPROCKET_PICKUP_LOCATION", "Primary"),
			Timeout:        time.Duration(getIntOrViper("SHIPROCKET_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Payment: PaymentConfig{
			BaseURL:   getEnvOrViper("PAYMENT_BASE_URL", "https://api.razorpay.com/v1"),
			KeyID:     getEnvOrViper("PAYMENT_KEY_ID", ""),
			KeySecret: getEnvOrViper("PAYMENT_KEY_SECRET", ""),
		},
		Shipping: ShippingConfig{
			FreeThreshold: getFloatOrViper("FREE_SHIPPING_THRESHOLD", 999),
			FlatFee:       getFloatOrViper("FLAT_SHIPPING_FEE", 49),
		},
		Stream: StreamConfig{
			PollInterval: time.Duration(getIntOrViper("STREAM_POLL_SECONDS", 30)) * time.Second,
			MaxLifetime:  time.Duration(getIntOrViper("STREAM_MAX_MINUTES", 10)) * time.Minute,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Carrier and payment credentials are deliberately not required: without
	// them the carrier gateway serves deterministic mock data and the payment
	// provider runs in test mode, so local checkout never blocks on secrets.
	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntOrViper(key string, defaultValue int) int {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatOrViper(key string, defaultValue float64) float64 {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
