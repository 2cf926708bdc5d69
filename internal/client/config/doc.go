// Package config loads runtime configuration for the policyctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. POLICYCTL_SERVER, POLICYCTL_SESSION and POLICYCTL_TIMEOUT.
//  3. Global command-line flags, which override earlier values.
//
// Supported flags
//
//	-s, --server string     API base URL
//	    --session string    local session database
//	    --timeout duration  HTTP request timeout
//
// Flag parsing stops at the command name; everything after it belongs to
// the command.
package config
