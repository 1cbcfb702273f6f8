package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// TransactionCounter is the slice of ChainClient the guard polls
type TransactionCounter interface {
	TransactionCount(ctx context.Context, account common.Address) (uint64, error)
}

// DefaultConfirmation returns the polling bounds used when none are configured
func DefaultConfirmation() config.ConfirmationConfig {
	return config.ConfirmationConfig{
		Timeout:        2 * time.Minute,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

// NonceGuard keeps the locally tracked transaction count in lockstep with
// the node. One guard owns one account for the lifetime of one run; it is
// not safe for concurrent use.
type NonceGuard struct {
	counter TransactionCounter
	cfg     config.ConfirmationConfig
	log     *slog.Logger
	state   models.NonceState
}

// NewNonceGuard initialises the expected count from the node
func NewNonceGuard(ctx context.Context, counter TransactionCounter, account common.Address, cfg config.ConfirmationConfig, log *slog.Logger) (*NonceGuard, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfirmation().Timeout
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultConfirmation().InitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	count, err := counter.TransactionCount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction count for %s: %w", account.Hex(), err)
	}

	return &NonceGuard{
		counter: counter,
		cfg:     cfg,
		log:     log,
		state:   models.NonceState{Account: account, LastConfirmedCount: count},
	}, nil
}

// Expected returns the nonce the next transaction must use
func (g *NonceGuard) Expected() uint64 {
	return g.state.LastConfirmedCount
}

// State returns a copy of the guard's state
func (g *NonceGuard) State() models.NonceState {
	return g.state
}

// errNonceBehind keeps the poll going while the node lags
var errNonceBehind = errors.New("transaction count behind")

// Confirm blocks until the node reports exactly one more transaction than
// the last confirmed count, then advances the count. RPC errors are fatal.
func (g *NonceGuard) Confirm(ctx context.Context) error {
	want := g.state.LastConfirmedCount + 1
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	var observed uint64
	polls := 0
	confirmed, err := retry.DoWithData(func() (uint64, error) {
		polls++
		count, err := g.counter.TransactionCount(pollCtx, g.state.Account)
		if err != nil {
			if pollCtx.Err() != nil {
				return 0, err
			}
			return 0, retry.Unrecoverable(fmt.Errorf("failed to poll transaction count: %w", err))
		}
		observed = count

		switch {
		case count > want:
			return 0, retry.Unrecoverable(domain.NonceDriftErr{Account: g.state.Account, Expected: want, Observed: count})
		case count < want:
			return 0, errNonceBehind
		}
		return count, nil
	},
		retry.Context(pollCtx),
		retry.Attempts(0),
		retry.Delay(g.cfg.InitialBackoff),
		retry.MaxDelay(g.cfg.MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, _ error) {
			g.log.Debug("waiting for nonce",
				slog.Uint64("expected", want),
				slog.Uint64("observed", observed),
				slog.Uint64("attempt", uint64(n)+1),
			)
		}),
	)

	switch {
	case err == nil:
		g.state.LastConfirmedCount = confirmed
		g.log.Debug("nonce confirmed",
			slog.String("account", g.state.Account.Hex()),
			slog.Uint64("count", confirmed),
			slog.Int("polls", polls),
		)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case pollCtx.Err() != nil && !errors.Is(err, domain.ErrNonceDrift):
		return domain.NonceConfirmationTimeoutErr{
			Account:  g.state.Account,
			Expected: want,
			Observed: observed,
			Waited:   time.Since(start),
		}
	}
	return err
}
