package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-l", "-w", "-d", "-s", "-k", "-t", "-m", "-r",
	"-u", "-p", "-b", "-g", "-e", "-store", "-redis", "-v",
}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      gRPC bind address (e.g., ":50051")
//	-l string      HTTP bind address for the file endpoint
//	-w string      public base URL of the file endpoint
//	-d string      PostgreSQL DSN
//	-s string      access token HMAC secret
//	-k string      resource token HMAC secret
//	-t int         access token validity, minutes
//	-m int         super-admin token validity, minutes
//	-r int         refresh token validity, minutes
//	-u string      S3 root user
//	-p string      S3 root password
//	-b string      S3 bucket name
//	-g string      S3 region
//	-e string      S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-store string  refresh token store: postgres or redis
//	-redis string  Redis address
//	-v string      log level
//
// The super-admin password has no flag; it comes from the environment or the
// config file only.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "address and port to run HTTP file endpoint")
	fs.StringVar(&config.PublicBaseURL, "w", config.PublicBaseURL, "public base URL of the HTTP endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessSecret, "s", config.AccessSecret, "access token secret")
	fs.StringVar(&config.ResourceSecret, "k", config.ResourceSecret, "resource token secret")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	adminTokenValidity := fs.Int("m", int(config.AdminTokenValidityDuration.Minutes()), "super-admin token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.RefreshStore, "store", config.RefreshStore, "refresh token store (postgres|redis)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "Redis address")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	// Minute flags only override values that were actually given, so a
	// sub-minute duration from the file survives.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "m":
			config.AdminTokenValidityDuration = time.Duration(*adminTokenValidity) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
		}
	})

	return nil
}
