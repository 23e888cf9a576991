package validation

import (
	"fmt"
	"net/url"
	"strconv"
)

// ValidateProxyURL validates a proxy URL for outbound connections.
// Supported schemes are http, https, and socks5. An empty string is valid
// (no proxy configured).
func ValidateProxyURL(proxyURL string) error {
	if proxyURL == "" {
		return nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL format: %v", err)
	}

	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("unsupported proxy scheme: %s (valid: http, https, socks5)", u.Scheme)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("proxy URL must include hostname")
	}

	if u.User != nil && u.User.Username() == "" {
		return fmt.Errorf("proxy URL has empty username")
	}

	if err := ValidateHostname(u.Hostname()); err != nil {
		return fmt.Errorf("invalid proxy hostname: %w", err)
	}

	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid proxy port: %s", portStr)
		}
		if err := ValidatePort(port); err != nil {
			return fmt.Errorf("invalid proxy port: %w", err)
		}
	}

	return nil
}
