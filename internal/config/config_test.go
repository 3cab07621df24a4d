package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so a developer .env file
// cannot leak into it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_FILE", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Export.PageSize)
	assert.Equal(t, -1, cfg.Export.PageOverlap)
	assert.Equal(t, 0, cfg.Export.MaxPages)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Alert.Cooldown)

	eth := cfg.Explorers[model.ChainEthereum]
	assert.Equal(t, "https://api.etherscan.io/api", eth.BaseURL)
	assert.Equal(t, "apikey", eth.APIKeyParam)
	assert.Empty(t, eth.APIKeyHeader)
	assert.Equal(t, 30*time.Second, eth.Timeout)
	assert.Equal(t, 3, eth.MaxAttempts)

	dot := cfg.Explorers[model.ChainPolkadot]
	assert.Equal(t, "X-API-Key", dot.APIKeyHeader)
	assert.Len(t, cfg.Explorers, len(model.AllChains))

	assert.Equal(t, 1000, cfg.PageSize(model.ChainEthereum))
	assert.Equal(t, 100, cfg.PageSize(model.ChainKusama))
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("PAGE_OVERLAP", "10")
	t.Setenv("ETHEREUM_API_KEY", "secret")
	t.Setenv("ETHEREUM_RPS", "2.5")
	t.Setenv("TEZOS_EXPLORER_URL", "http://localhost:5000")
	t.Setenv("TEZOS_REWARD_SENDERS", "tz1baker, tz1payout ,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.PageSize(model.ChainEthereum))
	assert.Equal(t, 10, cfg.Export.PageOverlap)
	assert.Equal(t, "secret", cfg.Explorers[model.ChainEthereum].APIKey)
	assert.InDelta(t, 2.5, cfg.Explorers[model.ChainEthereum].RPS, 1e-9)
	assert.Equal(t, "http://localhost:5000", cfg.Explorers[model.ChainTezos].BaseURL)
	assert.Equal(t, []string{"tz1baker", "tz1payout"}, cfg.RewardSenders[model.ChainTezos])
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("HEDERA_API_KEY=from-file\nALGORAND_API_KEY=from-file\n"), 0o600))
	t.Setenv("HEDERA_API_KEY", "from-env")
	// Registers restoration of the variable godotenv is about to set.
	t.Setenv("ALGORAND_API_KEY", "")
	require.NoError(t, os.Unsetenv("ALGORAND_API_KEY"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Explorers[model.ChainHedera].APIKey)
	assert.Equal(t, "from-file", cfg.Explorers[model.ChainAlgorand].APIKey)
}

func TestLoad_ConfigFileOverlay(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reward_senders:
  tezos:
    - tz1baker
  hedera:
    - 0.0.1337
explorers:
  polkadot:
    base_url: https://mirror.example/subscan
    api_key: file-key
    rps: 7
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEZOS_REWARD_SENDERS", "tz1env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tz1env", "tz1baker"}, cfg.RewardSenders[model.ChainTezos])
	assert.Equal(t, []string{"0.0.1337"}, cfg.RewardSenders[model.ChainHedera])
	dot := cfg.Explorers[model.ChainPolkadot]
	assert.Equal(t, "https://mirror.example/subscan", dot.BaseURL)
	assert.Equal(t, "file-key", dot.APIKey)
	assert.InDelta(t, 7.0, dot.RPS, 1e-9)
	assert.Equal(t, "X-API-Key", dot.APIKeyHeader)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown chain", "reward_senders:\n  bitcoin: [x]\n"},
		{"unknown field", "page_size: 10\n"},
		{"malformed yaml", "reward_senders: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			t.Setenv("CONFIG_FILE", path)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config file")
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	isolate(t)
	t.Setenv("CONFIG_FILE", "/nonexistent/export.yaml")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"negative page size", map[string]string{"PAGE_SIZE": "-1"}, "PAGE_SIZE"},
		{"overlap not smaller than page", map[string]string{"PAGE_SIZE": "10", "PAGE_OVERLAP": "10"}, "PAGE_OVERLAP"},
		{"negative max pages", map[string]string{"MAX_PAGES": "-3"}, "MAX_PAGES"},
		{"negative rps", map[string]string{"HEDERA_RPS": "-1"}, "HEDERA_RPS"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
