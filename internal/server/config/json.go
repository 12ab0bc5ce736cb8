package config

import (
	"encoding/json"
	"os"

	"github.com/Antoney20/archives/internal/flagx"
	"github.com/Antoney20/archives/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "30s" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	DatabaseDriver             string         `json:"database_driver"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	AdminTokenValidityDuration timex.Duration `json:"admin_token_validity_duration"`
	StorageRoot                string         `json:"storage_root"`
	BaseMediaURL               string         `json:"base_media_url"`
	AllowedOrigins             []string       `json:"allowed_origins"`
	MaxUploadBytes             int64          `json:"max_upload_bytes"`
	ServeMedia                 *bool          `json:"serve_media"`
	ShutdownTimeout            timex.Duration `json:"shutdown_timeout"`
	LogLevel                   string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config. Keys that
// are absent from the file leave the current value untouched. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.StorageRoot, c.StorageRoot)
	setString(&config.BaseMediaURL, c.BaseMediaURL)
	setString(&config.LogLevel, c.LogLevel)

	if c.AdminTokenValidityDuration.Duration > 0 {
		config.AdminTokenValidityDuration = c.AdminTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.ServeMedia != nil {
		config.ServeMedia = *c.ServeMedia
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
