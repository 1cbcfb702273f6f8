package migration

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrIncompatiblePairs is returned when the source pool's tokens do not map onto the destination pool's
var ErrIncompatiblePairs = errors.New("incompatible pairs")

// PoolState is a read-only snapshot of a pool
type PoolState struct {
	Token0      common.Address
	Token1      common.Address
	Reserve0    *big.Int
	Reserve1    *big.Int
	TotalSupply *big.Int
}

// MigrationQuote describes what migrating liquidity would do. Withdrawn is
// in source token order; Deposit and ChargeBack are in destination order.
type MigrationQuote struct {
	Withdrawn0  *big.Int
	Withdrawn1  *big.Int
	Deposit0    *big.Int
	Deposit1    *big.Int
	ChargeBack0 *big.Int
	ChargeBack1 *big.Int
	Minted      *big.Int
}

// QuoteMigration computes the result of burning liquidity from src,
// converting each token through route (legacy to upgraded) and depositing
// into dst at dst's current ratio.
func QuoteMigration(src, dst PoolState, liquidity *big.Int, route map[common.Address]common.Address) (*MigrationQuote, error) {
	if liquidity.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if src.TotalSupply.Sign() == 0 {
		return nil, ErrInsufficientLiquidityBurned
	}

	w0 := new(big.Int).Div(new(big.Int).Mul(liquidity, src.Reserve0), src.TotalSupply)
	w1 := new(big.Int).Div(new(big.Int).Mul(liquidity, src.Reserve1), src.TotalSupply)
	if w0.Sign() <= 0 || w1.Sign() <= 0 {
		return nil, ErrInsufficientLiquidityBurned
	}

	a0, a1, err := alignToDestination(src, dst, w0, w1, route)
	if err != nil {
		return nil, err
	}

	d0, d1 := OptimalDeposit(a0, a1, dst.Reserve0, dst.Reserve1)
	return &MigrationQuote{
		Withdrawn0:  w0,
		Withdrawn1:  w1,
		Deposit0:    d0,
		Deposit1:    d1,
		ChargeBack0: new(big.Int).Sub(a0, d0),
		ChargeBack1: new(big.Int).Sub(a1, d1),
		Minted:      mintedLiquidity(d0, d1, dst.Reserve0, dst.Reserve1, dst.TotalSupply),
	}, nil
}

// OptimalDeposit returns the largest amounts that fit the pool's ratio
func OptimalDeposit(amount0, amount1, reserve0, reserve1 *big.Int) (*big.Int, *big.Int) {
	if reserve0.Sign() == 0 && reserve1.Sign() == 0 {
		return new(big.Int).Set(amount0), new(big.Int).Set(amount1)
	}
	optimal1 := Quote(amount0, reserve0, reserve1)
	if optimal1.Cmp(amount1) <= 0 {
		return new(big.Int).Set(amount0), optimal1
	}
	optimal0 := Quote(amount1, reserve1, reserve0)
	return optimal0, new(big.Int).Set(amount1)
}

// Upgraded returns the token t becomes after migration
func Upgraded(t common.Address, route map[common.Address]common.Address) common.Address {
	if up, ok := route[t]; ok {
		return up
	}
	return t
}

// alignToDestination maps source-ordered amounts onto destination order
func alignToDestination(src, dst PoolState, w0, w1 *big.Int, route map[common.Address]common.Address) (*big.Int, *big.Int, error) {
	u0 := Upgraded(src.Token0, route)
	u1 := Upgraded(src.Token1, route)
	switch {
	case u0 == dst.Token0 && u1 == dst.Token1:
		return w0, w1, nil
	case u0 == dst.Token1 && u1 == dst.Token0:
		return w1, w0, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s/%s migrates to %s/%s, destination holds %s/%s", ErrIncompatiblePairs,
			src.Token0.Hex(), src.Token1.Hex(), u0.Hex(), u1.Hex(), dst.Token0.Hex(), dst.Token1.Hex())
	}
}
