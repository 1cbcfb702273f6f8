package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("expands env and applies default paths", func(t *testing.T) {
		t.Setenv("EVEREST_TEST_KEY", "0xabc")
		t.Setenv("ARCTIC_RPC", "")
		os.Unsetenv("ARCTIC_RPC")
		root := writeProject(t)

		cfg, err := LoadProjectConfig(root)
		require.NoError(t, err)

		assert.Len(t, cfg.Networks, 3)
		assert.Equal(t, "http://127.0.0.1:8545", cfg.Networks["localhost"].RPCURL)
		assert.Equal(t, uint64(1337), cfg.Networks["localhost"].ChainID)
		assert.Equal(t, "https://arctic-rpc.icenetwork.io:9933", cfg.Networks["ice_arctic"].RPCURL, "loaded from .env")
		assert.Equal(t, "0xabc", cfg.Deployer.PrivateKey)
		assert.Equal(t, "artifacts", cfg.Paths.Artifacts)
		assert.Equal(t, "addresses", cfg.Paths.Addresses)
		assert.Equal(t, "constants", cfg.Paths.Parameters)
	})

	t.Run("environment wins over .env", func(t *testing.T) {
		t.Setenv("ARCTIC_RPC", "http://override")
		root := writeProject(t)

		cfg, err := LoadProjectConfig(root)
		require.NoError(t, err)
		assert.Equal(t, "http://override", cfg.Networks["ice_arctic"].RPCURL)
	})

	t.Run("custom paths", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFile), []byte(`
[paths]
artifacts = "out"
addresses = "deployments"
`), 0644))

		cfg, err := LoadProjectConfig(root)
		require.NoError(t, err)
		assert.Equal(t, "out", cfg.Paths.Artifacts)
		assert.Equal(t, "deployments", cfg.Paths.Addresses)
		assert.Equal(t, "constants", cfg.Paths.Parameters)
		assert.NotNil(t, cfg.Networks)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProjectConfig(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("invalid toml", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFile), []byte("[networks\n"), 0644))
		_, err := LoadProjectConfig(root)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), ProjectFile)
	})
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/root", "artifacts"), ProjectPath("/root", "artifacts"))
	assert.Equal(t, "/abs/out", ProjectPath("/root", "/abs/out"))
}
