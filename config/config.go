// Package config loads and validates the poussetaches client configuration
// from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	apiURLEnv  = "POUSSETACHES_URL"
	baseURLEnv = "POUSSETACHES_BASE_URL"
	authKeyEnv = "POUSSETACHES_AUTH_KEY"

	defaultAPIURL = "http://localhost:7991"
)

// Config holds everything the client needs to talk to a poussetaches daemon.
// It is immutable after Load/Validate.
type Config struct {
	// APIURL is the base URL of the poussetaches daemon.
	APIURL string
	// BaseURL is the public base URL of this process, used to build the
	// target URL the daemon will deliver tasks back to.
	BaseURL string
	// AuthKey is the shared key carried in the Poussetaches-Auth-Key
	// header in both directions. Empty disables verification.
	AuthKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		APIURL:  getEnv(apiURLEnv, defaultAPIURL),
		BaseURL: getEnv(baseURLEnv, ""),
		AuthKey: getEnv(authKeyEnv, ""),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrAPIURLInvalid)
	}

	if err := validateServiceURL(c.APIURL, ErrAPIURLInvalid); err != nil {
		return err
	}

	return validateServiceURL(c.BaseURL, ErrBaseURLInvalid)
}

func validateServiceURL(urlStr string, baseErr error) error {
	if urlStr == "" {
		return fmt.Errorf("%w: URL is empty", baseErr)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", baseErr, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got: %s",
			baseErr, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%w: host is empty", baseErr)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return strings.TrimSpace(val)
	}

	return defaultVal
}
