package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Antoney20/archives/internal/flagx"
)

const envPrefix = "ARCHIVES_"

var lookupEnv = os.LookupEnv

// parseEnv overlays ARCHIVES_* environment variables. Malformed numeric,
// boolean or duration values panic, like a broken config file.
//
//	ARCHIVES_ADDR, ARCHIVES_DB_DRIVER, ARCHIVES_DB_DSN, ARCHIVES_SECRET_KEY,
//	ARCHIVES_ADMIN_TOKEN_TTL, ARCHIVES_STORAGE_ROOT, ARCHIVES_MEDIA_URL,
//	ARCHIVES_ALLOWED_ORIGINS (comma separated), ARCHIVES_MAX_UPLOAD_BYTES,
//	ARCHIVES_SERVE_MEDIA, ARCHIVES_SHUTDOWN_TIMEOUT, ARCHIVES_LOG_LEVEL
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	if v, ok := get("ADDR"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := get("DB_DRIVER"); ok {
		config.DatabaseDriver = v
	}
	if v, ok := get("DB_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := get("ADMIN_TOKEN_TTL"); ok {
		config.AdminTokenValidityDuration = mustDuration("ADMIN_TOKEN_TTL", v)
	}
	if v, ok := get("STORAGE_ROOT"); ok {
		config.StorageRoot = v
	}
	if v, ok := get("MEDIA_URL"); ok {
		config.BaseMediaURL = v
	}
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = flagx.SplitList(v)
	}
	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", envPrefix, err))
		}
		config.MaxUploadBytes = n
	}
	if v, ok := get("SERVE_MEDIA"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("%sSERVE_MEDIA: %w", envPrefix, err))
		}
		config.ServeMedia = b
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		config.ShutdownTimeout = mustDuration("SHUTDOWN_TIMEOUT", v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

func mustDuration(key, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, key, err))
	}
	return d
}
