package usecase_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddressLedger(t *testing.T) {
	ctx := context.Background()

	newLedger := func() *usecase.AddressLedger {
		return usecase.NewAddressLedger("localhost", 1337, models.RunFull, deployer)
	}

	t.Run("keeps insertion order", func(t *testing.T) {
		l := newLedger()
		for i, name := range []string{"evrs", "multisig", "timelock"} {
			require.NoError(t, l.Append(models.DeploymentRecord{
				Step:    name,
				Address: common.BigToAddress(big.NewInt(int64(i + 1))),
			}))
		}

		names := make([]string, 0, l.Len())
		for _, r := range l.Records() {
			names = append(names, r.Step)
		}
		assert.Equal(t, []string{"evrs", "multisig", "timelock"}, names)

		rec, ok := l.Lookup("multisig")
		require.True(t, ok)
		assert.Equal(t, "multisig", rec.Step)
		_, ok = l.Lookup("router")
		assert.False(t, ok)
	})

	t.Run("rejects duplicate steps", func(t *testing.T) {
		l := newLedger()
		require.NoError(t, l.Append(models.DeploymentRecord{Step: "evrs"}))
		assert.Error(t, l.Append(models.DeploymentRecord{Step: "evrs"}))
		assert.Equal(t, 1, l.Len())
	})

	t.Run("records are copied out", func(t *testing.T) {
		l := newLedger()
		require.NoError(t, l.Append(models.DeploymentRecord{Step: "evrs", Contract: "Evrs"}))
		l.Records()[0].Contract = "mutated"
		rec, _ := l.Lookup("evrs")
		assert.Equal(t, "Evrs", rec.Contract)
		assert.Equal(t, []any{}, rec.ConstructorArgs)
	})

	t.Run("snapshot carries run metadata", func(t *testing.T) {
		l := newLedger()
		require.NoError(t, l.Append(models.DeploymentRecord{Step: "evrs"}))
		snap := l.Snapshot()
		assert.Equal(t, "localhost", snap.Network)
		assert.Equal(t, uint64(1337), snap.ChainID)
		assert.Equal(t, models.RunFull, snap.Run)
		assert.Equal(t, deployer, snap.Deployer)
		assert.Len(t, snap.RunID, 36)
		assert.Equal(t, snap.RunID, l.Snapshot().RunID)
	})

	t.Run("persist writes everything", func(t *testing.T) {
		l := newLedger()
		require.NoError(t, l.Append(models.DeploymentRecord{Step: "evrs"}))
		require.NoError(t, l.Append(models.DeploymentRecord{Step: "factory"}))

		store := new(MockLedgerStore)
		store.On("Save", ctx, "out.json", mock.MatchedBy(func(f *models.LedgerFile) bool {
			return len(f.Records) == 2
		})).Return(nil)

		require.NoError(t, l.Persist(ctx, store, "out.json"))
		store.AssertExpectations(t)
	})

	t.Run("persist failure is typed", func(t *testing.T) {
		l := newLedger()
		store := new(MockLedgerStore)
		store.On("Save", ctx, "out.json", mock.Anything).Return(errors.New("disk full"))

		err := l.Persist(ctx, store, "out.json")
		assert.ErrorIs(t, err, domain.ErrLedgerPersistenceFailed)
		var perr *domain.LedgerPersistenceErr
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "out.json", perr.Destination)
	})
}

func TestPartialDestination(t *testing.T) {
	assert.Equal(t, "addresses/fuji.partial.json", usecase.PartialDestination("addresses/fuji.json"))
	assert.Equal(t, "addresses/fuji-minichef.partial.json", usecase.PartialDestination("addresses/fuji-minichef.json"))
}
