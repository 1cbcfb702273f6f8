package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testProject = `
[networks.localhost]
rpc_url = "http://127.0.0.1:8545"
chain_id = 1337

[networks.ice_arctic]
rpc_url = "${ARCTIC_RPC}"

[networks.ice_snow]
rpc_url = "https://snow-rpc.icenetwork.io"
chain_id = 551

[deployer]
private_key = "${EVEREST_TEST_KEY}"
`

const testParameters = `
native_token_name: ICZ
token:
  symbol: EVRS
  name: Everest
  total_supply: 230000000
  airdrop: 11500000
timelock_delay: 259200
proposal_threshold: 100000
multisig:
  owners:
    - "0x3915dC8c57eA4c0978C34ef64820dFeb3760CeF7"
  threshold: 1
foundation_multisig:
  owners:
    - "0x3915dC8c57eA4c0978C34ef64820dFeb3760CeF7"
  threshold: 1
wrapped_native_token: "0xDbd5b8C9cF1e13d6eba4Cf05868F9dc20e093FE1"
evrs_staking_allocation: 500
weth_evrs_farm_allocation: 3000
initial_farms:
  - token_a: evrs
    token_b: "0x00000000000000000000000000000000000000f1"
    weight: 100
vester_allocations:
  - recipient: treasury
    allocation: 2105
  - recipient: multisig
    allocation: 1579
  - recipient: foundation
    allocation: 263
  - recipient: chef
    allocation: 6053
    is_mini_chef: true
revenue_distribution:
  - recipient: foundation
    allocation: 2000
  - recipient: multisig
    allocation: 8000
`

// writeProject lays out everest.toml, .env and constants/localhost.yaml
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFile), []byte(testProject), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("ARCTIC_RPC=https://arctic-rpc.icenetwork.io:9933\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "constants"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "constants", "localhost.yaml"), []byte(testParameters), 0644))
	return root
}
