package config

// ProjectConfig is the parsed everest.toml
type ProjectConfig struct {
	Networks map[string]NetworkEntry `toml:"networks"`
	Paths    PathsConfig             `toml:"paths"`
	Deployer DeployerConfig          `toml:"deployer"`
}

// NetworkEntry is one [networks.<name>] table
type NetworkEntry struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id"`
}

// PathsConfig locates artifacts, parameters and ledger output, relative to the project root
type PathsConfig struct {
	Artifacts  string `toml:"artifacts"`
	Addresses  string `toml:"addresses"`
	Parameters string `toml:"parameters"`
}

// DeployerConfig holds the signing key, usually an env reference
type DeployerConfig struct {
	PrivateKey string `toml:"private_key"`
}

// DefaultPaths returns the directory layout used when everest.toml omits [paths]
func DefaultPaths() PathsConfig {
	return PathsConfig{
		Artifacts:  "artifacts",
		Addresses:  "addresses",
		Parameters: "constants",
	}
}
