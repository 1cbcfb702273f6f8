package migration

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// World holds every token and pool the router can touch
type World struct {
	Timestamp uint64

	tokens map[common.Address]*Token
	pairs  map[common.Address]*Pair
}

// NewWorld creates an empty world at the given block timestamp
func NewWorld(timestamp uint64) *World {
	return &World{
		Timestamp: timestamp,
		tokens:    make(map[common.Address]*Token),
		pairs:     make(map[common.Address]*Pair),
	}
}

// DeployToken registers a plain ERC20
func (w *World) DeployToken(addr common.Address, symbol string) *Token {
	t := newToken(addr, symbol)
	w.tokens[addr] = t
	return t
}

// DeployBridgeToken registers a token that swaps the given legacy tokens 1:1
func (w *World) DeployBridgeToken(addr common.Address, symbol string, legacy ...common.Address) *Token {
	t := w.DeployToken(addr, symbol)
	t.accepts = make(map[common.Address]bool, len(legacy))
	for _, l := range legacy {
		t.accepts[l] = true
	}
	return t
}

// CreatePair registers an empty pool for two known tokens
func (w *World) CreatePair(addr, tokenA, tokenB common.Address) (*Pair, error) {
	if tokenA == tokenB {
		return nil, ErrIdenticalTokens
	}
	for _, t := range []common.Address{tokenA, tokenB} {
		if _, ok := w.tokens[t]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, t.Hex())
		}
	}
	t0, t1 := SortTokens(tokenA, tokenB)
	p := &Pair{Address: addr, Token0: t0, Token1: t1, Reserve0: new(big.Int), Reserve1: new(big.Int)}
	w.pairs[addr] = p
	w.DeployToken(addr, "ELP")
	return p, nil
}

// Token returns a registered token or nil
func (w *World) Token(addr common.Address) *Token {
	return w.tokens[addr]
}

// Pair returns a registered pool or nil
func (w *World) Pair(addr common.Address) *Pair {
	return w.pairs[addr]
}

// AddLiquidity moves both amounts from provider into the pool and mints to provider
func (w *World) AddLiquidity(provider, pair common.Address, amount0, amount1 *big.Int) (*big.Int, error) {
	var minted *big.Int
	err := w.atomically(func() error {
		p, ok := w.pairs[pair]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPair, pair.Hex())
		}
		if err := w.tokens[p.Token0].Transfer(provider, p.Address, amount0); err != nil {
			return err
		}
		if err := w.tokens[p.Token1].Transfer(provider, p.Address, amount1); err != nil {
			return err
		}
		var err error
		minted, err = w.mint(p, provider)
		return err
	})
	return minted, err
}

// atomically runs fn and rolls every token and pool back if it fails
func (w *World) atomically(fn func() error) error {
	snapshot := w.clone()
	if err := fn(); err != nil {
		w.restore(snapshot)
		return err
	}
	return nil
}

// restore rewinds in place so pointers handed out earlier stay valid
func (w *World) restore(snapshot *World) {
	for k, t := range w.tokens {
		if s, ok := snapshot.tokens[k]; ok {
			*t = *s
		} else {
			delete(w.tokens, k)
		}
	}
	for k, p := range w.pairs {
		if s, ok := snapshot.pairs[k]; ok {
			*p = *s
		} else {
			delete(w.pairs, k)
		}
	}
}

func (w *World) clone() *World {
	c := NewWorld(w.Timestamp)
	for k, t := range w.tokens {
		c.tokens[k] = t.clone()
	}
	for k, p := range w.pairs {
		c.pairs[k] = p.clone()
	}
	return c
}
