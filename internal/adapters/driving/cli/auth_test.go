package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/storage/memory"
)

// withTestConfig swaps the wired config store for an in-memory one.
func withTestConfig(t *testing.T) *memory.ConfigStore {
	t.Helper()
	original := configStore
	cfg := memory.NewConfigStore()
	configStore = cfg
	t.Cleanup(func() { configStore = original })
	return cfg
}

func TestResolveOwner(t *testing.T) {
	cfg := withTestConfig(t)

	// Nothing configured
	_, err := resolveOwner()
	assert.Error(t, err)

	// Configured default
	require.NoError(t, cfg.Set("default_retailer", "shop1"))
	owner, err := resolveOwner()
	require.NoError(t, err)
	assert.Equal(t, "shop1", owner)

	// Flag wins over default
	flagRetailer = "shop2"
	defer func() { flagRetailer = "" }()
	owner, err = resolveOwner()
	require.NoError(t, err)
	assert.Equal(t, "shop2", owner)
}

func TestConfiguredRetailers(t *testing.T) {
	cfg := withTestConfig(t)

	assert.Empty(t, configuredRetailers())

	require.NoError(t, cfg.Set("retailers.zeta.client_id", "z"))
	require.NoError(t, cfg.Set("retailers.alpha.client_id", "a"))
	require.NoError(t, cfg.Set("retailers.alpha.client_secret", "s"))
	// Removed retailers keep empty keys and are filtered out
	require.NoError(t, cfg.Set("retailers.gone.client_id", ""))
	// Unrelated keys are ignored
	require.NoError(t, cfg.Set("default_retailer", "alpha"))
	require.NoError(t, cfg.Set("api.base_url", "https://example.test"))

	assert.Equal(t, []string{"alpha", "zeta"}, configuredRetailers())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 8))
	assert.Equal(t, "abcdefgh", truncate("abcdefghij", 8))
}
