// Package migration models the bridge migration router and the pools it
// moves liquidity between, using the same integer arithmetic as the
// contracts. It is used to preview chargebacks and as a test oracle.
package migration

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnknownToken          = errors.New("unknown token")
	ErrUnknownPair           = errors.New("unknown pair")
	ErrZeroAmount            = errors.New("amount must be positive")
)

// Token is an ERC20 balance sheet. Bridge tokens additionally accept a set
// of legacy tokens which they swap 1:1 into themselves.
type Token struct {
	Address common.Address
	Symbol  string

	supply     *big.Int
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	accepts    map[common.Address]bool
}

func newToken(addr common.Address, symbol string) *Token {
	return &Token{
		Address:    addr,
		Symbol:     symbol,
		supply:     new(big.Int),
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// BalanceOf returns a copy of holder's balance
func (t *Token) BalanceOf(holder common.Address) *big.Int {
	if b, ok := t.balances[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply returns a copy of the supply
func (t *Token) TotalSupply() *big.Int {
	return new(big.Int).Set(t.supply)
}

// Allowance returns what spender may move on owner's behalf
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Accepts reports whether t is a bridge token for legacy
func (t *Token) Accepts(legacy common.Address) bool {
	return t.accepts[legacy]
}

func (t *Token) Mint(to common.Address, amount *big.Int) {
	t.supply.Add(t.supply, amount)
	t.balances[to] = new(big.Int).Add(t.BalanceOf(to), amount)
}

func (t *Token) burn(from common.Address, amount *big.Int) error {
	bal := t.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from.Hex(), bal, t.Symbol, amount)
	}
	t.balances[from] = bal.Sub(bal, amount)
	t.supply.Sub(t.supply, amount)
	return nil
}

// Transfer moves amount from one holder to another
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	bal := t.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientBalance, from.Hex(), bal, t.Symbol, amount)
	}
	t.balances[from] = bal.Sub(bal, amount)
	t.balances[to] = new(big.Int).Add(t.BalanceOf(to), amount)
	return nil
}

// Approve sets spender's allowance over owner's balance
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) {
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
}

// TransferFrom moves amount using spender's allowance
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	allowed := t.Allowance(from, spender)
	if allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s may spend %s %s of %s, needs %s", ErrInsufficientAllowance, spender.Hex(), allowed, t.Symbol, from.Hex(), amount)
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	t.allowances[from][spender] = allowed.Sub(allowed, amount)
	return nil
}

func (t *Token) clone() *Token {
	c := newToken(t.Address, t.Symbol)
	c.supply.Set(t.supply)
	for k, v := range t.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for owner, m := range t.allowances {
		c.allowances[owner] = make(map[common.Address]*big.Int, len(m))
		for spender, v := range m {
			c.allowances[owner][spender] = new(big.Int).Set(v)
		}
	}
	if t.accepts != nil {
		c.accepts = make(map[common.Address]bool, len(t.accepts))
		for k, v := range t.accepts {
			c.accepts[k] = v
		}
	}
	return c
}
