package models

// AllocationEntry assigns a weight to a symbolic recipient role
type AllocationEntry struct {
	Recipient string `yaml:"recipient" json:"recipient"`
	Weight    uint64 `yaml:"weight" json:"weight"`
	// Special marks the MiniChef recipient in vesting tables
	Special bool `yaml:"special" json:"special,omitempty"`
}

// FarmSpec registers a MiniChef pool for a token pair
type FarmSpec struct {
	TokenA string `yaml:"token_a" json:"tokenA"`
	TokenB string `yaml:"token_b" json:"tokenB"`
	Weight uint64 `yaml:"weight" json:"weight"`
}
