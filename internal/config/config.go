package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	SMTP      SMTPConfig
	Query     QueryConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	MQTT      MQTTConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	URI                   string
	Name                  string
	ConnectTimeoutSeconds int
}

type JWTConfig struct {
	Secret           string
	ExpiryHours      int
	CookieName       string
	CookieExpiryDays int
}

type SecurityConfig struct {
	BcryptCost int
}

type SMTPConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	From           string
	Insecure       bool
	TimeoutSeconds int
}

type QueryConfig struct {
	StrictFilters bool
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type MQTTConfig struct {
	Broker       string
	ClientID     string
	Username     string
	Password     string
	CatalogTopic string
	QoS          int
}

func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(homeDir)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := fromViper(v)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("DATABASE_NAME", "bookstore")
	v.SetDefault("DATABASE_CONNECT_TIMEOUT_SECONDS", 10)
	v.SetDefault("JWT_EXPIRY_HOURS", 90*24)
	v.SetDefault("JWT_COOKIE_NAME", "jwt")
	v.SetDefault("JWT_COOKIE_EXPIRY_DAYS", 90)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "Bookstore <no-reply@bookstore.local>")
	v.SetDefault("SMTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("QUERY_STRICT_FILTERS", false)
	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 0)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	v.SetDefault("CORS_MAX_AGE", 12*60*60)
	v.SetDefault("MQTT_CATALOG_TOPIC", "bookstore/catalog")
	v.SetDefault("MQTT_QOS", 1)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			URI:                   v.GetString("DATABASE_URI"),
			Name:                  v.GetString("DATABASE_NAME"),
			ConnectTimeoutSeconds: v.GetInt("DATABASE_CONNECT_TIMEOUT_SECONDS"),
		},
		JWT: JWTConfig{
			Secret:           v.GetString("JWT_SECRET"),
			ExpiryHours:      v.GetInt("JWT_EXPIRY_HOURS"),
			CookieName:       v.GetString("JWT_COOKIE_NAME"),
			CookieExpiryDays: v.GetInt("JWT_COOKIE_EXPIRY_DAYS"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		SMTP: SMTPConfig{
			Host:           v.GetString("SMTP_HOST"),
			Port:           v.GetInt("SMTP_PORT"),
			User:           v.GetString("SMTP_USER"),
			Password:       v.GetString("SMTP_PASSWORD"),
			From:           v.GetString("SMTP_FROM"),
			Insecure:       v.GetBool("SMTP_INSECURE"),
			TimeoutSeconds: v.GetInt("SMTP_TIMEOUT_SECONDS"),
		},
		Query: QueryConfig{
			StrictFilters: v.GetBool("QUERY_STRICT_FILTERS"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   v.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   v.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		MQTT: MQTTConfig{
			Broker:       v.GetString("MQTT_BROKER"),
			ClientID:     v.GetString("MQTT_CLIENT_ID"),
			Username:     v.GetString("MQTT_USERNAME"),
			Password:     v.GetString("MQTT_PASSWORD"),
			CatalogTopic: v.GetString("MQTT_CATALOG_TOPIC"),
			QoS:          v.GetInt("MQTT_QOS"),
		},
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Database.URI == "" {
		return errors.New("DATABASE_URI is required")
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown ENVIRONMENT %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func (c *JWTConfig) CookieTTL() time.Duration {
	return time.Duration(c.CookieExpiryDays) * 24 * time.Hour
}

func (c *DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

func (c *MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

func (c *SMTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
