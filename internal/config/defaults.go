package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider default configuration constants
const (
	// Timeout defaults
	DefaultUnderstandingTimeout = 300 * time.Second
	DefaultEmbedStartTimeout    = 60 * time.Second
	DefaultHTTPTimeout          = 120 * time.Second

	// Retry defaults
	DefaultProviderRetries = 3
	DefaultRetryDelayMs    = 500

	// Network defaults
	DefaultHTTPPort          = "8080"
	DefaultTwelveLabsBaseURL = "https://api.twelvelabs.io/v1.3"
)

// GatewayTuning carries the provider client knobs. Values come from the
// defaults above, overridable per-deployment through the environment.
type GatewayTuning struct {
	CallTimeout   time.Duration
	TextEmbedWait time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
}

// GetGatewayTuning reads the provider client knobs and validates them, so a
// misconfigured deployment fails at startup rather than on the first call.
func GetGatewayTuning() (GatewayTuning, error) {
	t := GatewayTuning{
		CallTimeout:   DefaultUnderstandingTimeout,
		TextEmbedWait: DefaultEmbedStartTimeout,
		MaxRetries:    DefaultProviderRetries,
		RetryBackoff:  DefaultRetryDelayMs * time.Millisecond,
	}
	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return t, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS %q: %w", v, err)
		}
		t.CallTimeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("PROVIDER_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return t, fmt.Errorf("invalid PROVIDER_RETRIES %q: %w", v, err)
		}
		t.MaxRetries = n
	}

	if err := ValidateTimeout(t.CallTimeout, "provider call"); err != nil {
		return t, err
	}
	if err := ValidateTimeout(t.TextEmbedWait, "text embed"); err != nil {
		return t, err
	}
	if err := ValidateRetries(t.MaxRetries, "provider"); err != nil {
		return t, err
	}
	return t, nil
}
