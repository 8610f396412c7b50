package kiotviet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/storage/memory"
	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

func TestFactory_Create(t *testing.T) {
	config := memory.NewConfigStore()
	require.NoError(t, config.Set("retailers.shop1.client_id", "abc"))
	require.NoError(t, config.Set("retailers.shop1.client_secret", "xyz"))

	factory := NewFactory(config)
	fetcher, err := factory.Create(context.Background(), "shop1")
	require.NoError(t, err)
	require.NotNil(t, fetcher)

	// The retailer header defaults to the owner ID
	assert.Equal(t, "shop1", fetcher.(*Fetcher).client.cfg.Retailer)
	assert.Equal(t, DefaultBaseURL, fetcher.(*Fetcher).client.cfg.baseURL())
}

func TestFactory_Create_ExplicitRetailerCode(t *testing.T) {
	config := memory.NewConfigStore()
	require.NoError(t, config.Set("retailers.shop1.client_id", "abc"))
	require.NoError(t, config.Set("retailers.shop1.client_secret", "xyz"))
	require.NoError(t, config.Set("retailers.shop1.retailer", "my-real-shop"))
	require.NoError(t, config.Set("api.base_url", "https://sandbox.example.test"))

	factory := NewFactory(config)
	fetcher, err := factory.Create(context.Background(), "shop1")
	require.NoError(t, err)

	cfg := fetcher.(*Fetcher).client.cfg
	assert.Equal(t, "my-real-shop", cfg.Retailer)
	assert.Equal(t, "https://sandbox.example.test", cfg.baseURL())
}

func TestFactory_Create_Unconfigured(t *testing.T) {
	factory := NewFactory(memory.NewConfigStore())

	_, err := factory.Create(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOwnerNotConfigured)
}
