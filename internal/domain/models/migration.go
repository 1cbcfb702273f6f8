package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MigrationPairMapping ties a legacy pool to its upgraded pool
type MigrationPairMapping struct {
	Source      common.Address `json:"source"`
	Destination common.Address `json:"destination"`
	Migrator    common.Address `json:"migrator"`
}

// ChargeBack is the amount of each destination-pool token returned to the recipient
type ChargeBack struct {
	Token0  common.Address `json:"token0"`
	Token1  common.Address `json:"token1"`
	Amount0 *big.Int       `json:"amount0"`
	Amount1 *big.Int       `json:"amount1"`
}
