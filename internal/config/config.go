// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Datastore DatastoreConfig
	Directory DirectoryConfig
	Server    ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatastoreConfig holds settings for the upstream PostgREST datastore.
type DatastoreConfig struct {
	URL     string        // Base URL of the PostgREST endpoint
	APIKey  string        // API key sent as apikey + Bearer headers
	Table   string        // Listings table (default: listings)
	Timeout time.Duration // Per-request timeout (default: 30s)
}

// DirectoryConfig holds listing index and cache configuration.
type DirectoryConfig struct {
	PageSize     int           // Rows per fetch page (default: 1000)
	SnapshotTTL  time.Duration // Snapshot max age before lazy rebuild (default: 1h)
	FeaturedSize int           // Size of the featured sample (default: 12)
	PopularSize  int           // Size of the popular ranking (default: 20)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	PublicURL    string        // Base URL used in sitemap links (optional)
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	datastoreURL := flag.String("datastore-url", "", "Base URL of the PostgREST datastore")
	datastoreKey := flag.String("datastore-key", "", "API key for the datastore")
	datastoreTable := flag.String("datastore-table", "", "Listings table name (default: listings)")
	datastoreTimeout := flag.String("datastore-timeout", "", "Per-request datastore timeout (default: 30s)")

	pageSize := flag.String("page-size", "", "Rows per fetch page (default: 1000)")
	snapshotTTL := flag.String("snapshot-ttl", "", "Snapshot time-to-live (default: 1h)")

	serverName := flag.String("server-name", "", "Name for the server")
	publicURL := flag.String("public-url", "", "Public base URL for sitemap links")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Datastore: DatastoreConfig{
			URL:    getConfigValue(*datastoreURL, "DATASTORE_URL", ""),
			APIKey: getConfigValue(*datastoreKey, "DATASTORE_API_KEY", ""),
			Table:  getConfigValue(*datastoreTable, "DATASTORE_TABLE", "listings"),
		},
		Directory: DirectoryConfig{
			PageSize:     getIntConfigValue(*pageSize, "PAGE_SIZE", 1000),
			FeaturedSize: getIntConfigValue("", "FEATURED_SIZE", 12),
			PopularSize:  getIntConfigValue("", "POPULAR_SIZE", 20),
		},
		Server: ServerConfig{
			Name:      getConfigValue(*serverName, "SERVER_NAME", "ShopFinder Server"),
			PublicURL: getConfigValue(*publicURL, "PUBLIC_URL", ""),
			Port:      getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
	}

	var err error
	if cfg.Datastore.Timeout, err = parseDurationValue(*datastoreTimeout, "DATASTORE_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid datastore timeout: %w", err)
	}
	if cfg.Directory.SnapshotTTL, err = parseDurationValue(*snapshotTTL, "SNAPSHOT_TTL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid snapshot TTL: %w", err)
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Datastore.URL == "" {
		return errors.New("DATASTORE_URL is required")
	}
	if _, err := url.Parse(c.Datastore.URL); err != nil {
		return fmt.Errorf("invalid datastore URL %q: %w", c.Datastore.URL, err)
	}

	if c.Directory.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Directory.PageSize)
	}
	if c.Directory.SnapshotTTL <= 0 {
		return fmt.Errorf("snapshot TTL must be positive, got %s", c.Directory.SnapshotTTL)
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file values.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
