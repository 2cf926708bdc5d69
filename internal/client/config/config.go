package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

// Config holds runtime settings for the policyctl CLI.
//
// Fields:
//   - ServerURL: base URL of the PolicySignoff JSON API.
//   - SessionPath: SQLite file that keeps the login between runs.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL   string
	SessionPath string
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionPath = defaultSessionPath()
	c.Timeout = 30 * time.Second
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "policyctl-session.db"
	}
	return filepath.Join(dir, "policyctl", "session.db")
}

func parseEnv(c *Config) {
	if v, ok := os.LookupEnv("POLICYCTL_SERVER"); ok && v != "" {
		c.ServerURL = v
	}
	if v, ok := os.LookupEnv("POLICYCTL_SESSION"); ok && v != "" {
		c.SessionPath = v
	}
	if v, ok := os.LookupEnv("POLICYCTL_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// NewFlagSet returns the global policyctl flags bound to c. Parsing stops at
// the first non-flag argument, which is the command name.
func NewFlagSet(c *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("policyctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVarP(&c.ServerURL, "server", "s", c.ServerURL, "API base URL")
	fs.StringVar(&c.SessionPath, "session", c.SessionPath, "path of the local session database")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "HTTP request timeout")
	fs.BoolP("help", "h", false, "show help")
	return fs
}

// LoadConfig applies defaults, then POLICYCTL_* environment variables, then
// the global flags in args. It returns the arguments left after the flags.
func LoadConfig(args []string) (*Config, *pflag.FlagSet, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	fs := NewFlagSet(cfg)
	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return cfg, fs, nil
}
