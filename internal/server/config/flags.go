package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/Antoney20/archives/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-b string   database driver: postgres or sqlite
//	-d string   database DSN
//	-s string   admin JWT HMAC secret key
//	-t int      admin token validity, minutes
//	-r string   storage root directory
//	-u string   base media URL
//	-o string   allowed origins, comma separated
//	-m int      max upload size, bytes
//	-l string   log level
//	-serve-media bool  serve the storage root under /media
//
// Only these flags are looked at (see flagx.FilterArgs), so -c/-config and
// flags of other components do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-b", "-d", "-s", "-t", "-r", "-u", "-o", "-m", "-l", "-serve-media",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	adminTokenValidity := fs.Int("t", int(config.AdminTokenValidityDuration.Minutes()), "admin token validity (in minutes)")

	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "storage root directory")
	fs.StringVar(&config.BaseMediaURL, "u", config.BaseMediaURL, "base media URL")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed origins, comma separated")
	fs.Int64Var(&config.MaxUploadBytes, "m", config.MaxUploadBytes, "max upload size in bytes")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.ServeMedia, "serve-media", config.ServeMedia, "serve storage root under /media")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AdminTokenValidityDuration = time.Duration(*adminTokenValidity) * time.Minute
	config.AllowedOrigins = flagx.SplitList(*origins)
}
