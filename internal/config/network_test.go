package config

import (
	"testing"

	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkResolver(t *testing.T) {
	resolver := NewNetworkResolver(&config.ProjectConfig{
		Networks: map[string]config.NetworkEntry{
			"ice_snow":   {RPCURL: "https://snow", ChainID: 551},
			"ice_arctic": {RPCURL: "https://arctic"},
			"localhost":  {RPCURL: "http://127.0.0.1:8545", ChainID: 1337},
		},
	})

	t.Run("sorted names", func(t *testing.T) {
		assert.Equal(t, []string{"ice_arctic", "ice_snow", "localhost"}, resolver.GetNetworks())
	})

	t.Run("resolve", func(t *testing.T) {
		network, err := resolver.Resolve("ice_snow")
		require.NoError(t, err)
		assert.Equal(t, &config.Network{Name: "ice_snow", RPCURL: "https://snow", ChainID: 551}, network)
	})

	t.Run("unknown network suggests close names", func(t *testing.T) {
		_, err := resolver.Resolve("snow")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetworkNotFound)

		var unknown domain.UnknownNetworkErr
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, []string{"ice_snow"}, unknown.Suggestions)
		assert.Contains(t, err.Error(), "did you mean ice_snow?")
	})

	t.Run("no suggestions", func(t *testing.T) {
		_, err := resolver.Resolve("zzz")
		var unknown domain.UnknownNetworkErr
		require.ErrorAs(t, err, &unknown)
		assert.Empty(t, unknown.Suggestions)
	})

	t.Run("nil project", func(t *testing.T) {
		assert.Empty(t, NewNetworkResolver(nil).GetNetworks())
	})
}
