// Package config handles configuration for the archives server: defaults,
// an optional JSON file, ARCHIVES_* environment variables and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported metadata database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds runtime settings for the archives server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDriver / DatabaseDSN: metadata store ("postgres" via pgx or "sqlite").
//   - SecretKey: HMAC secret for admin JWTs (HS256). Do not use the default in prod.
//   - AdminTokenValidityDuration: lifetime of tokens minted by the admin CLI.
//   - StorageRoot: directory under which app files are written.
//   - BaseMediaURL: prefix joined with a file's relative path to form its public URL.
//   - AllowedOrigins: Origin values accepted on upload and delete.
//   - MaxUploadBytes: upper bound for an upload request body.
//   - ServeMedia: serve StorageRoot under /media (development only).
type Config struct {
	EndpointAddrHTTP           string
	DatabaseDriver             string
	DatabaseDSN                string
	SecretKey                  string
	AdminTokenValidityDuration time.Duration
	StorageRoot                string
	BaseMediaURL               string
	AllowedOrigins             []string
	MaxUploadBytes             int64
	ServeMedia                 bool
	ShutdownTimeout            time.Duration
	LogLevel                   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "file:archives.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	c.SecretKey = "secretKey"
	c.AdminTokenValidityDuration = 60 * time.Minute
	c.StorageRoot = "media"
	c.BaseMediaURL = "http://127.0.0.1:8000/media"
	c.AllowedOrigins = nil
	c.MaxUploadBytes = 100 << 20
	c.ServeMedia = true
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if strings.TrimSpace(c.StorageRoot) == "" {
		errs = append(errs, errors.New("storage root is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload bytes must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg, lookupEnv)
	parseFlags(cfg)
	return cfg
}
