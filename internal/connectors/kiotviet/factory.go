package kiotviet

import (
	"context"
	"fmt"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.FetcherFactory = (*Factory)(nil)

// Factory builds owner-scoped fetchers from stored credentials.
// Credentials live in the config store under retailers.<owner>.*, so
// several retailers can be configured side by side.
type Factory struct {
	config driven.ConfigStore
}

// NewFactory creates a fetcher factory over the config store.
func NewFactory(config driven.ConfigStore) *Factory {
	return &Factory{config: config}
}

// Create builds a fetcher for one retailer. No network I/O happens
// here; bad credentials surface on the first fetch.
func (f *Factory) Create(_ context.Context, ownerID string) (driven.ResourceFetcher, error) {
	prefix := "retailers." + ownerID + "."

	cfg := Config{
		ClientID:     f.config.GetString(prefix + "client_id"),
		ClientSecret: f.config.GetString(prefix + "client_secret"),
		Retailer:     f.config.GetString(prefix + "retailer"),
		BaseURL:      f.config.GetString("api.base_url"),
		TokenURL:     f.config.GetString("api.token_url"),
	}
	if cfg.Retailer == "" {
		cfg.Retailer = ownerID
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrOwnerNotConfigured, ownerID)
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create client for %s: %w", ownerID, err)
	}
	return NewFetcher(client), nil
}
