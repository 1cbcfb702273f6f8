package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCounter replays a fixed sequence of counts, repeating the last
type scriptedCounter struct {
	counts []uint64
	errAt  int
	polls  int
}

func (c *scriptedCounter) TransactionCount(context.Context, common.Address) (uint64, error) {
	c.polls++
	if c.errAt > 0 && c.polls == c.errAt {
		return 0, errors.New("connection reset by peer")
	}
	i := min(c.polls-1, len(c.counts)-1)
	return c.counts[i], nil
}

// stallingCounter answers once, then blocks until the caller gives up
type stallingCounter struct {
	polls int
}

func (c *stallingCounter) TransactionCount(ctx context.Context, _ common.Address) (uint64, error) {
	c.polls++
	if c.polls == 1 {
		return 3, nil
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestNonceGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("initialises from the node", func(t *testing.T) {
		g, err := usecase.NewNonceGuard(ctx, &scriptedCounter{counts: []uint64{42}}, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)
		assert.Equal(t, uint64(42), g.Expected())
		assert.Equal(t, deployer, g.State().Account)
	})

	t.Run("confirms after the count catches up", func(t *testing.T) {
		counter := &scriptedCounter{counts: []uint64{5, 5, 5, 6}}
		g, err := usecase.NewNonceGuard(ctx, counter, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)

		require.NoError(t, g.Confirm(ctx))
		assert.Equal(t, uint64(6), g.Expected())
		assert.Equal(t, 4, counter.polls)
	})

	t.Run("times out when the count never moves", func(t *testing.T) {
		g, err := usecase.NewNonceGuard(ctx, &scriptedCounter{counts: []uint64{3}}, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)

		start := time.Now()
		err = g.Confirm(ctx)
		assert.ErrorIs(t, err, domain.ErrNonceConfirmationTimeout)
		assert.GreaterOrEqual(t, time.Since(start), fastConfirmation().Timeout)

		var timeout domain.NonceConfirmationTimeoutErr
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, uint64(4), timeout.Expected)
		assert.Equal(t, uint64(3), timeout.Observed)
		assert.Equal(t, uint64(3), g.Expected(), "count must not advance on timeout")
	})

	t.Run("a poll cut off by the deadline is a timeout", func(t *testing.T) {
		counter := &stallingCounter{}
		g, err := usecase.NewNonceGuard(ctx, counter, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)

		err = g.Confirm(ctx)
		assert.ErrorIs(t, err, domain.ErrNonceConfirmationTimeout)
		assert.Equal(t, uint64(3), g.Expected())
	})

	t.Run("count beyond expected is drift", func(t *testing.T) {
		g, err := usecase.NewNonceGuard(ctx, &scriptedCounter{counts: []uint64{3, 5}}, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)

		err = g.Confirm(ctx)
		assert.ErrorIs(t, err, domain.ErrNonceDrift)
		assert.NotErrorIs(t, err, domain.ErrNonceConfirmationTimeout)
	})

	t.Run("rpc errors are fatal", func(t *testing.T) {
		counter := &scriptedCounter{counts: []uint64{3}, errAt: 2}
		g, err := usecase.NewNonceGuard(ctx, counter, deployer, fastConfirmation(), discardLogger())
		require.NoError(t, err)

		err = g.Confirm(ctx)
		assert.ErrorContains(t, err, "connection reset")
		assert.Equal(t, 2, counter.polls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		cfg := config.ConfirmationConfig{Timeout: time.Minute, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
		g, err := usecase.NewNonceGuard(ctx, &scriptedCounter{counts: []uint64{3}}, deployer, cfg, discardLogger())
		require.NoError(t, err)

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, g.Confirm(cctx), context.DeadlineExceeded)
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		g, err := usecase.NewNonceGuard(ctx, &scriptedCounter{counts: []uint64{0, 1}}, deployer, config.ConfirmationConfig{}, discardLogger())
		require.NoError(t, err)
		require.NoError(t, g.Confirm(ctx))
		assert.Equal(t, uint64(1), g.Expected())
	})
}
