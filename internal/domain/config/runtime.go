package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string

	// Context settings
	Network *Network // nil if not specified

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration
	DryRun         bool

	// Nonce confirmation polling
	Confirmation ConfirmationConfig

	// Resolved configurations
	Project    *ProjectConfig
	Parameters *NetworkParameters // nil until a network is selected
}

// ConfirmationConfig bounds the nonce confirmation polling loop
type ConfirmationConfig struct {
	Timeout        time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
}
