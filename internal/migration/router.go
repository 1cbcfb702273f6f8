package migration

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
)

// Router moves legacy tokens and liquidity onto their bridge-migrated
// equivalents. The migrator for a legacy token is the upgraded token itself.
type Router struct {
	Address common.Address

	world     *World
	admins    map[common.Address]bool
	migrators map[common.Address]common.Address
}

// NewRouter deploys a router with owner as its first admin
func NewRouter(world *World, addr, owner common.Address) *Router {
	return &Router{
		Address:   addr,
		world:     world,
		admins:    map[common.Address]bool{owner: true},
		migrators: make(map[common.Address]common.Address),
	}
}

// IsAdmin is readable by anyone
func (r *Router) IsAdmin(account common.Address) bool {
	return r.admins[account]
}

func (r *Router) AddAdmin(caller, account common.Address) error {
	if !r.admins[caller] {
		return domain.ErrUnauthorized
	}
	r.admins[account] = true
	return nil
}

func (r *Router) RemoveAdmin(caller, account common.Address) error {
	if !r.admins[caller] {
		return domain.ErrUnauthorized
	}
	delete(r.admins, account)
	return nil
}

// AddMigrator maps a legacy token to the bridge token that accepts it
func (r *Router) AddMigrator(caller, token, migrator common.Address) error {
	if !r.admins[caller] {
		return domain.ErrUnauthorized
	}
	m := r.world.Token(migrator)
	if m == nil || !m.Accepts(token) {
		return fmt.Errorf("%w: %s does not migrate %s", domain.ErrIncompatibleMigrator, migrator.Hex(), token.Hex())
	}
	r.migrators[token] = migrator
	return nil
}

// BridgeMigrator returns the migrator for token, or the zero address
func (r *Router) BridgeMigrator(token common.Address) common.Address {
	return r.migrators[token]
}

// Routes returns a copy of the legacy to upgraded token mapping
func (r *Router) Routes() map[common.Address]common.Address {
	out := make(map[common.Address]common.Address, len(r.migrators))
	for k, v := range r.migrators {
		out[k] = v
	}
	return out
}

// MigrateToken pulls amount of a legacy token from caller and sends the
// same amount of its upgraded token to recipient.
func (r *Router) MigrateToken(caller, token, recipient common.Address, amount *big.Int, deadline uint64) error {
	if err := r.checkDeadline(deadline); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	return r.world.atomically(func() error {
		legacy := r.world.Token(token)
		if legacy == nil {
			return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
		}
		if err := legacy.TransferFrom(r.Address, caller, r.Address, amount); err != nil {
			return err
		}
		upgraded, err := r.swap(token, amount)
		if err != nil {
			return err
		}
		return upgraded.Transfer(r.Address, recipient, amount)
	})
}

// MigrateLiquidity burns liquidity of pairA held by caller, migrates the
// withdrawn tokens and deposits them into pairB for recipient. Whatever
// does not fit pairB's ratio is returned to recipient.
func (r *Router) MigrateLiquidity(caller, pairA, pairB, recipient common.Address, liquidity *big.Int, deadline uint64) (*MigrationQuote, error) {
	if err := r.checkDeadline(deadline); err != nil {
		return nil, err
	}
	if liquidity.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	var result *MigrationQuote
	err := r.world.atomically(func() error {
		src, dst := r.world.Pair(pairA), r.world.Pair(pairB)
		if src == nil {
			return fmt.Errorf("%w: %s", ErrUnknownPair, pairA.Hex())
		}
		if dst == nil {
			return fmt.Errorf("%w: %s", ErrUnknownPair, pairB.Hex())
		}
		dstState, err := r.world.State(pairB)
		if err != nil {
			return err
		}
		srcState, err := r.world.State(pairA)
		if err != nil {
			return err
		}
		// Fail before moving anything if the pools do not line up
		if _, _, err := alignToDestination(srcState, dstState, big.NewInt(0), big.NewInt(0), r.migrators); err != nil {
			return err
		}

		if err := r.world.Token(pairA).TransferFrom(r.Address, caller, pairA, liquidity); err != nil {
			return err
		}
		w0, w1, err := r.world.burn(src, r.Address)
		if err != nil {
			return err
		}
		for _, leg := range []struct {
			token  common.Address
			amount *big.Int
		}{{src.Token0, w0}, {src.Token1, w1}} {
			if _, ok := r.migrators[leg.token]; !ok {
				continue
			}
			if _, err := r.swap(leg.token, leg.amount); err != nil {
				return err
			}
		}

		a0, a1, err := alignToDestination(srcState, dstState, w0, w1, r.migrators)
		if err != nil {
			return err
		}
		d0, d1 := OptimalDeposit(a0, a1, dstState.Reserve0, dstState.Reserve1)
		t0, t1 := r.world.Token(dst.Token0), r.world.Token(dst.Token1)
		if err := t0.Transfer(r.Address, pairB, d0); err != nil {
			return err
		}
		if err := t1.Transfer(r.Address, pairB, d1); err != nil {
			return err
		}
		minted, err := r.world.mint(dst, recipient)
		if err != nil {
			return err
		}

		result = &MigrationQuote{
			Withdrawn0:  w0,
			Withdrawn1:  w1,
			Deposit0:    d0,
			Deposit1:    d1,
			ChargeBack0: new(big.Int).Sub(a0, d0),
			ChargeBack1: new(big.Int).Sub(a1, d1),
			Minted:      minted,
		}
		if result.ChargeBack0.Sign() > 0 {
			if err := t0.Transfer(r.Address, recipient, result.ChargeBack0); err != nil {
				return err
			}
		}
		if result.ChargeBack1.Sign() > 0 {
			if err := t1.Transfer(r.Address, recipient, result.ChargeBack1); err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

// CalculateChargeBack previews what MigrateLiquidity would return to the
// recipient, in pairB's token order. It does not change any state.
func (r *Router) CalculateChargeBack(pairA, pairB common.Address, liquidity *big.Int) (*big.Int, *big.Int, error) {
	src, err := r.world.State(pairA)
	if err != nil {
		return nil, nil, err
	}
	dst, err := r.world.State(pairB)
	if err != nil {
		return nil, nil, err
	}
	q, err := QuoteMigration(src, dst, liquidity, r.migrators)
	if err != nil {
		return nil, nil, err
	}
	return q.ChargeBack0, q.ChargeBack1, nil
}

func (r *Router) checkDeadline(deadline uint64) error {
	if r.world.Timestamp > deadline {
		return fmt.Errorf("%w: block time %d is past %d", domain.ErrDeadlineExpired, r.world.Timestamp, deadline)
	}
	return nil
}

// swap hands amount of a legacy token held by the router to its migrator
// and receives the same amount of the upgraded token
func (r *Router) swap(token common.Address, amount *big.Int) (*Token, error) {
	addr, ok := r.migrators[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoMigratorConfigured, token.Hex())
	}
	upgraded := r.world.Token(addr)
	if err := r.world.Token(token).Transfer(r.Address, addr, amount); err != nil {
		return nil, err
	}
	upgraded.Mint(r.Address, amount)
	return upgraded, nil
}
