// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"redshift-sales-loader/internal/models"
)

// Defaults
const (
	DefaultRedshiftPort   = 5439
	DefaultIAMRoleARN     = "arn:aws:iam::123456789:role/IAMRoleRedshift"
	DefaultConnectTimeout = 10 * time.Second
)

// ErrMissingConfig is wrapped by Validate when required values are absent.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all configuration values for the application.
type Config struct {
	// Warehouse
	RedshiftHost     string
	RedshiftPort     int
	RedshiftDB       string
	RedshiftUser     string
	RedshiftPassword string
	IAMRoleARN       string
	SSLMode          string
	ConnectTimeout   time.Duration

	// AWS
	AWSRegion    string
	UploadBucket string

	// SES
	SESSenderEmail string
	AlertEmail     string

	// Application
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables. Unparsable numeric
// values fail immediately; required values are checked by Validate.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	port, err := getEnvInt("REDSHIFT_PORT", DefaultRedshiftPort)
	if err != nil {
		return nil, models.ConfigurationError(err)
	}

	timeout, err := getEnvDuration("REDSHIFT_CONNECT_TIMEOUT", DefaultConnectTimeout)
	if err != nil {
		return nil, models.ConfigurationError(err)
	}

	cfg := &Config{
		// Warehouse
		RedshiftHost:     getEnv("REDSHIFT_HOST", ""),
		RedshiftPort:     port,
		RedshiftDB:       getEnv("REDSHIFT_DB", ""),
		RedshiftUser:     getEnv("REDSHIFT_USER", ""),
		RedshiftPassword: getEnv("REDSHIFT_PASSWORD", ""),
		IAMRoleARN:       getEnv("REDSHIFT_IAM_ROLE_ARN", DefaultIAMRoleARN),
		SSLMode:          getEnv("REDSHIFT_SSLMODE", ""),
		ConnectTimeout:   timeout,

		// AWS
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		UploadBucket: getEnv("UPLOAD_BUCKET", ""),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		AlertEmail:     getEnv("LOAD_ALERT_EMAIL", ""),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate checks that everything needed to reach the warehouse is present.
func (c *Config) Validate() error {
	var missing []string
	if c.RedshiftHost == "" {
		missing = append(missing, "REDSHIFT_HOST")
	}
	if c.RedshiftDB == "" {
		missing = append(missing, "REDSHIFT_DB")
	}
	if c.RedshiftUser == "" {
		missing = append(missing, "REDSHIFT_USER")
	}
	if c.RedshiftPassword == "" {
		missing = append(missing, "REDSHIFT_PASSWORD")
	}
	if c.IAMRoleARN == "" {
		missing = append(missing, "REDSHIFT_IAM_ROLE_ARN")
	}
	if len(missing) > 0 {
		return models.ConfigurationError(fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", ")))
	}

	if c.RedshiftPort <= 0 || c.RedshiftPort > 65535 {
		return models.ConfigurationError(fmt.Errorf("REDSHIFT_PORT out of range: %d", c.RedshiftPort))
	}

	return nil
}

// AlertsEnabled reports whether failed loads should be emailed.
func (c *Config) AlertsEnabled() bool {
	return c.AlertEmail != "" && c.SESSenderEmail != ""
}

// Endpoint returns host:port for logging. It never includes credentials.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.RedshiftHost, strconv.Itoa(c.RedshiftPort))
}

// WarehouseURL returns the connection string for the warehouse.
func (c *Config) WarehouseURL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
		if c.RedshiftHost == "localhost" || c.RedshiftHost == "127.0.0.1" {
			sslMode = "disable"
		}
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	// Redshift has no support for pgx's prepared statement cache.
	query.Set("default_query_exec_mode", "simple_protocol")
	if c.ConnectTimeout > 0 {
		seconds := int((c.ConnectTimeout + time.Second - 1) / time.Second)
		query.Set("connect_timeout", strconv.Itoa(seconds))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.RedshiftUser, c.RedshiftPassword),
		Host:     c.Endpoint(),
		Path:     "/" + c.RedshiftDB,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, value)
	}
	return intVal, nil
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %q", key, value)
	}
	return d, nil
}
