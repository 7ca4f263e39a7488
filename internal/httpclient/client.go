// Package httpclient builds the pooled HTTP client shared by LCD requests.
package httpclient

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// ClientConfig holds configuration options for creating HTTP clients
type ClientConfig struct {
	// MaxIdleConnsPerHost bounds keep-alive connections to the LCD node
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle keep-alive connection is kept
	IdleConnTimeout time.Duration

	// Timeout bounds a whole request, including reading the body
	Timeout time.Duration

	// DialTimeout bounds establishing the TCP connection
	DialTimeout time.Duration

	// ResponseHeaderTimeout bounds waiting for response headers
	ResponseHeaderTimeout time.Duration
}

// getEnvDuration reads a duration from an environment variable, returning the default if not set or invalid.
// Accepts either plain integers (seconds) or Go duration strings (e.g. "45s", "2m").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}

// DefaultConfig returns a ClientConfig suited to LCD nodes. Overridable via:
//   - CLICKER_HTTP_TIMEOUT: overall request timeout (default: 30s)
//   - CLICKER_HTTP_RESPONSE_HEADER_TIMEOUT: time to wait for headers (default: 20s)
func DefaultConfig() ClientConfig {
	return ClientConfig{
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		Timeout:               getEnvDuration("CLICKER_HTTP_TIMEOUT", 30*time.Second),
		DialTimeout:           10 * time.Second,
		ResponseHeaderTimeout: getEnvDuration("CLICKER_HTTP_RESPONSE_HEADER_TIMEOUT", 20*time.Second),
	}
}

// NewHTTPClient creates a new HTTP client with the provided configuration.
// If config is nil, DefaultConfig() is used.
func NewHTTPClient(config *ClientConfig) *http.Client {
	if config == nil {
		cfg := DefaultConfig()
		config = &cfg
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConnsPerHost,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}
