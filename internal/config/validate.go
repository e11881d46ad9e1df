package config

import (
	"fmt"
	"net/url"
	"strings"
)

const maxChunkSize = DefaultChunkSize

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Values that would break an operation are reset to their defaults.
func (c *Config) Validate() []error {
	var errs []error

	if c.ChunkSize < 1 || c.ChunkSize > maxChunkSize {
		errs = append(errs, fmt.Errorf("chunk_size %d outside 1..%d, using %d", c.ChunkSize, maxChunkSize, DefaultChunkSize))
		c.ChunkSize = DefaultChunkSize
	}

	if c.FetchTimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("fetch_timeout_seconds %d must be positive, using %d", c.FetchTimeoutSeconds, DefaultFetchTimeout))
		c.FetchTimeoutSeconds = DefaultFetchTimeout
	}

	if !validRulePrefix(c.RulePrefix) {
		errs = append(errs, fmt.Errorf("rule_prefix %q must be non-empty letters, digits, '-' or '_', using %q", c.RulePrefix, DefaultRulePrefix))
		c.RulePrefix = DefaultRulePrefix
	}

	u, err := url.Parse(c.BlocklistURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("blocklist_url %q is not an http(s) URL, using default", c.BlocklistURL))
		c.BlocklistURL = DefaultBlocklistURL
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not recognised, using info", c.LogLevel))
		c.LogLevel = "info"
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q must be console or json", c.LogFormat))
		c.LogFormat = "console"
	}

	return errs
}

// Rule display names end up inside single-quoted PowerShell strings and
// -like patterns, so the prefix is restricted to a safe alphabet.
func validRulePrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
