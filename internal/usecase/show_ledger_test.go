package usecase_test

import (
	"context"
	"os"
	"testing"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowLedger(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "localhost"}}
	ledger := &models.LedgerFile{Network: "localhost", Run: models.RunMiniChef}

	t.Run("defaults to the full run", func(t *testing.T) {
		store := new(MockLedgerStore)
		store.On("Load", ctx, "addresses/localhost.json").Return(ledger, nil)

		result, err := usecase.NewShowLedger(cfg, store).Run(ctx, usecase.ShowLedgerParams{})
		require.NoError(t, err)
		assert.Equal(t, "addresses/localhost.json", result.Destination)
		assert.Same(t, ledger, result.Ledger)
	})

	t.Run("partial ledger of a run kind", func(t *testing.T) {
		store := new(MockLedgerStore)
		store.On("Load", ctx, "addresses/localhost-minichef.partial.json").Return(ledger, nil)

		result, err := usecase.NewShowLedger(cfg, store).Run(ctx, usecase.ShowLedgerParams{Kind: models.RunMiniChef, Partial: true})
		require.NoError(t, err)
		assert.Equal(t, "addresses/localhost-minichef.partial.json", result.Destination)
	})

	t.Run("missing file", func(t *testing.T) {
		store := new(MockLedgerStore)
		store.On("Load", ctx, "addresses/localhost.json").Return(nil, os.ErrNotExist)

		_, err := usecase.NewShowLedger(cfg, store).Run(ctx, usecase.ShowLedgerParams{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no network", func(t *testing.T) {
		_, err := usecase.NewShowLedger(&config.RuntimeConfig{}, new(MockLedgerStore)).Run(ctx, usecase.ShowLedgerParams{})
		assert.Error(t, err)
	})
}
