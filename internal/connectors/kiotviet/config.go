package kiotviet

import (
	"fmt"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

const (
	// DefaultBaseURL is the KiotViet public API endpoint.
	DefaultBaseURL = "https://public.kiotapi.com"

	// DefaultTokenURL is the KiotViet identity server token endpoint.
	DefaultTokenURL = "https://id.kiotviet.vn/connect/token"

	// tokenScope is the scope required for public API access.
	tokenScope = "PublicApi.Access"
)

// Config holds the per-retailer client configuration.
type Config struct {
	// ClientID is the OAuth2 client identifier issued by KiotViet.
	ClientID string

	// ClientSecret is the OAuth2 client secret.
	ClientSecret string

	// Retailer is the shop name, sent as the Retailer header.
	Retailer string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// TokenURL overrides the token endpoint. Defaults to DefaultTokenURL.
	TokenURL string
}

// Validate checks that the required credential fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: client credentials missing", domain.ErrAuthRequired)
	}
	if c.Retailer == "" {
		return fmt.Errorf("%w: retailer name missing", domain.ErrInvalidInput)
	}
	return nil
}

// baseURL returns the configured or default API endpoint.
func (c *Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// tokenURL returns the configured or default token endpoint.
func (c *Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return DefaultTokenURL
}
