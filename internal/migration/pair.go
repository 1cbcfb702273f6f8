package migration

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MinimumLiquidity is locked forever on a pool's first mint
var MinimumLiquidity = big.NewInt(1000)

var (
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrIdenticalTokens             = errors.New("identical tokens")
)

// Pair is a constant-product pool with the protocol fee switched off.
// Its liquidity token lives in the world under the pair's address.
type Pair struct {
	Address  common.Address
	Token0   common.Address
	Token1   common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// SortTokens orders two token addresses the way pairs store them
func SortTokens(a, b common.Address) (common.Address, common.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}

func (p *Pair) clone() *Pair {
	return &Pair{
		Address:  p.Address,
		Token0:   p.Token0,
		Token1:   p.Token1,
		Reserve0: new(big.Int).Set(p.Reserve0),
		Reserve1: new(big.Int).Set(p.Reserve1),
	}
}

// State snapshots the pool from live balances, as the router reads it
func (w *World) State(pair common.Address) (PoolState, error) {
	p, ok := w.pairs[pair]
	if !ok {
		return PoolState{}, fmt.Errorf("%w: %s", ErrUnknownPair, pair.Hex())
	}
	return PoolState{
		Token0:      p.Token0,
		Token1:      p.Token1,
		Reserve0:    w.tokens[p.Token0].BalanceOf(p.Address),
		Reserve1:    w.tokens[p.Token1].BalanceOf(p.Address),
		TotalSupply: w.tokens[p.Address].TotalSupply(),
	}, nil
}

// mint issues liquidity for whatever the pair holds above its reserves
func (w *World) mint(p *Pair, to common.Address) (*big.Int, error) {
	lp := w.tokens[p.Address]
	bal0 := w.tokens[p.Token0].BalanceOf(p.Address)
	bal1 := w.tokens[p.Token1].BalanceOf(p.Address)
	amount0 := new(big.Int).Sub(bal0, p.Reserve0)
	amount1 := new(big.Int).Sub(bal1, p.Reserve1)

	liquidity := mintedLiquidity(amount0, amount1, p.Reserve0, p.Reserve1, lp.TotalSupply())
	if liquidity.Sign() <= 0 {
		return nil, ErrInsufficientLiquidityMinted
	}
	if lp.TotalSupply().Sign() == 0 {
		lp.Mint(common.Address{}, MinimumLiquidity)
	}
	lp.Mint(to, liquidity)
	p.Reserve0, p.Reserve1 = bal0, bal1
	return liquidity, nil
}

// burn redeems the liquidity tokens the pair holds for its underlying tokens
func (w *World) burn(p *Pair, to common.Address) (*big.Int, *big.Int, error) {
	lp := w.tokens[p.Address]
	t0, t1 := w.tokens[p.Token0], w.tokens[p.Token1]
	bal0 := t0.BalanceOf(p.Address)
	bal1 := t1.BalanceOf(p.Address)
	liquidity := lp.BalanceOf(p.Address)
	supply := lp.TotalSupply()

	amount0 := new(big.Int).Div(new(big.Int).Mul(liquidity, bal0), supply)
	amount1 := new(big.Int).Div(new(big.Int).Mul(liquidity, bal1), supply)
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		return nil, nil, ErrInsufficientLiquidityBurned
	}
	if err := lp.burn(p.Address, liquidity); err != nil {
		return nil, nil, err
	}
	if err := t0.Transfer(p.Address, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := t1.Transfer(p.Address, to, amount1); err != nil {
		return nil, nil, err
	}
	p.Reserve0 = t0.BalanceOf(p.Address)
	p.Reserve1 = t1.BalanceOf(p.Address)
	return amount0, amount1, nil
}

// mintedLiquidity mirrors the pool's mint formula
func mintedLiquidity(amount0, amount1, reserve0, reserve1, supply *big.Int) *big.Int {
	if supply.Sign() == 0 {
		root := new(big.Int).Sqrt(new(big.Int).Mul(amount0, amount1))
		return root.Sub(root, MinimumLiquidity)
	}
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		return new(big.Int)
	}
	l0 := new(big.Int).Div(new(big.Int).Mul(amount0, supply), reserve0)
	l1 := new(big.Int).Div(new(big.Int).Mul(amount1, supply), reserve1)
	if l0.Cmp(l1) < 0 {
		return l0
	}
	return l1
}

// Quote returns the amount of B worth amountA at the given reserves
func Quote(amountA, reserveA, reserveB *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(amountA, reserveB), reserveA)
}
