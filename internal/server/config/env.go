package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "POLICYSIGNOFF_"

// loadDotEnv is a seam for godotenv.Load.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays Config with POLICYSIGNOFF_* environment variables.
// A .env file in the working directory is loaded first if present; variables
// already set in the process environment win over the file.
//
// Recognised variables (suffixes after the prefix):
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, SECRET_KEY,
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, UPLOAD_URL_TTL, DOWNLOAD_URL_TTL (Go durations),
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION,
//	S3_BASE_ENDPOINT, S3_PUBLIC_ENDPOINT, TIMEZONE, LOG_LEVEL,
//	CORS_ALLOWED_ORIGINS (comma separated), SECURE_COOKIES, MIGRATE_ON_START (bool).
//
// Malformed durations or booleans panic, matching the file and flag loaders.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3PublicEndpoint, "S3_PUBLIC_ENDPOINT")
	envString(&config.Timezone, "TIMEZONE")
	envString(&config.LogLevel, "LOG_LEVEL")

	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envDuration(&config.UploadURLValidityDuration, "UPLOAD_URL_TTL")
	envDuration(&config.DownloadURLValidityDuration, "DOWNLOAD_URL_TTL")

	envBool(&config.SecureCookies, "SECURE_COOKIES")
	envBool(&config.MigrateOnStart, "MIGRATE_ON_START")

	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.CORSAllowedOrigins = origins
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func envBool(dst *bool, name string) {
	if v, ok := lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}
