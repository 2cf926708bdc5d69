package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/policysignoff/internal/flagx"
	"github.com/dmitrijs2005/policysignoff/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. It is only used for
// decoding; non-empty values are copied into Config.
type FileConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicEndpoint             string         `json:"s3_public_endpoint" yaml:"s3_public_endpoint"`
	UploadURLValidityDuration    timex.Duration `json:"upload_url_validity_duration" yaml:"upload_url_validity_duration"`
	DownloadURLValidityDuration  timex.Duration `json:"download_url_validity_duration" yaml:"download_url_validity_duration"`
	Timezone                     string         `json:"timezone" yaml:"timezone"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	SecureCookies                *bool          `json:"secure_cookies" yaml:"secure_cookies"`
	MigrateOnStart               *bool          `json:"migrate_on_start" yaml:"migrate_on_start"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads configuration values from a JSON or YAML file into the
// provided Config. The path comes from the -c or -config flag; without it
// nothing is loaded. Files ending in .yaml or .yml are decoded as YAML,
// anything else as JSON.
//
// If the file cannot be read or decoded, the function panics.
func parseFile(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicEndpoint, c.S3PublicEndpoint)
	setString(&config.Timezone, c.Timezone)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.UploadURLValidityDuration.Duration > 0 {
		config.UploadURLValidityDuration = c.UploadURLValidityDuration.Duration
	}
	if c.DownloadURLValidityDuration.Duration > 0 {
		config.DownloadURLValidityDuration = c.DownloadURLValidityDuration.Duration
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.MigrateOnStart != nil {
		config.MigrateOnStart = *c.MigrateOnStart
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
