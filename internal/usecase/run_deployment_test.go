package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type runFixture struct {
	chain     *fakeChain
	clients   *fakeClients
	store     *MockLedgerStore
	confirmer *MockConfirmer
	progress  *MockProgressSink
	cfg       *config.RuntimeConfig
}

func newRunFixture(startCount uint64) *runFixture {
	chain := newFakeChain(startCount)
	return &runFixture{
		chain:     chain,
		clients:   &fakeClients{client: chain},
		store:     new(MockLedgerStore),
		confirmer: new(MockConfirmer),
		progress:  &MockProgressSink{},
		cfg: &config.RuntimeConfig{
			Network:        &config.Network{Name: "localhost", ChainID: 1337, RPCURL: "http://127.0.0.1:8545"},
			NonInteractive: true,
			Confirmation:   fastConfirmation(),
			Parameters:     testParameters(),
		},
	}
}

func (f *runFixture) useCase() *usecase.RunDeployment {
	return usecase.NewRunDeployment(f.cfg, f.clients, f.store, f.confirmer, f.progress, discardLogger())
}

func TestRunDeployment(t *testing.T) {
	ctx := context.Background()

	t.Run("full plan advances the nonce once per transaction", func(t *testing.T) {
		f := newRunFixture(7)
		f.store.On("Save", ctx, "addresses/localhost.json", mock.AnythingOfType("*models.LedgerFile")).Return(nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		require.NoError(t, err)

		txs := sentTransactions(result.Plan)
		assert.Equal(t, uint64(7+txs), f.chain.count)
		assert.Equal(t, uint64(7+txs), result.Nonce.LastConfirmedCount)
		for i, req := range f.chain.sent {
			assert.Equal(t, uint64(7+i), req.Nonce, "transaction %d", i)
		}

		recorded := recordedSteps(result.Plan)
		require.Len(t, result.Ledger.Records, len(recorded))
		for i, rec := range result.Ledger.Records {
			assert.Equal(t, recorded[i], rec.Step)
			assert.NotEqual(t, common.Address{}, rec.Address)
		}
		assert.Equal(t, "localhost", result.Ledger.Network)
		assert.Equal(t, uint64(1337), result.Ledger.ChainID)
		assert.Equal(t, deployer, result.Ledger.Deployer)
		assert.NotEmpty(t, result.Ledger.RunID)

		assert.Equal(t, result.Plan.Steps[len(result.Plan.Steps)-1].Name, result.LastStep)
		assert.Empty(t, result.FailedStep)
		require.NotNil(t, result.DeployCost())
		assert.Positive(t, result.DeployCost().Sign())
		assert.Contains(t, f.progress.stages(), usecase.StageRunCompleted)
		assert.Equal(t, 1, f.chain.closed)
		f.store.AssertExpectations(t)
	})

	t.Run("skipped steps bind configured addresses without sending", func(t *testing.T) {
		f := newRunFixture(0)
		f.cfg.Parameters.WrappedNativeToken = addr("0xaaaa")
		f.store.On("Save", ctx, "addresses/localhost-staking-rewards.json", mock.Anything).Return(nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunStakingRewards})
		require.NoError(t, err)

		require.Len(t, result.Plan.Steps, 3)
		assert.Equal(t, uint64(1), f.chain.count)
		require.Len(t, f.chain.sent, 1)
		assert.Equal(t, []any{common.HexToAddress("0xaaaa"), common.HexToAddress("0xe1")}, f.chain.sent[0].Args)

		require.Len(t, result.Ledger.Records, 1)
		rec := result.Ledger.Records[0]
		assert.Equal(t, "staking", rec.Step)
		assert.Equal(t, usecase.ContractStakingRewards, rec.Contract)
		assert.Equal(t, []any{common.HexToAddress("0xaaaa").Hex(), common.HexToAddress("0xe1").Hex()}, rec.ConstructorArgs)

		statuses := make([]usecase.StepStatus, len(result.Steps))
		for i, s := range result.Steps {
			statuses[i] = s.Status
		}
		assert.Equal(t, []usecase.StepStatus{usecase.StepSkipped, usecase.StepSkipped, usecase.StepExecuted}, statuses)
	})

	t.Run("failed step stops the run and writes a partial ledger", func(t *testing.T) {
		f := newRunFixture(0)
		f.chain.failContract = usecase.ContractTimelock
		f.store.On("Save", ctx, "addresses/localhost.partial.json", mock.Anything).Return(nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		require.Error(t, err)

		var stepErr *domain.StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, usecase.RoleTimelock, stepErr.Step)
		assert.ErrorIs(t, err, domain.ErrDeploymentFailed)

		assert.Equal(t, usecase.RoleTimelock, result.FailedStep)
		assert.Equal(t, usecase.RoleFoundation, result.LastStep)
		assert.Len(t, result.Ledger.Records, 4)
		assert.Equal(t, uint64(4), f.chain.count)
		f.store.AssertExpectations(t)
		f.store.AssertNotCalled(t, "Save", ctx, "addresses/localhost.json", mock.Anything)
	})

	t.Run("nonce timeout keeps the transaction that landed", func(t *testing.T) {
		f := newRunFixture(0)
		f.chain.freezeAfter = 2
		f.store.On("Save", ctx, "addresses/localhost.partial.json", mock.Anything).Return(nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNonceConfirmationTimeout)

		var timeout domain.NonceConfirmationTimeoutErr
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, uint64(3), timeout.Expected)
		assert.Equal(t, uint64(2), timeout.Observed)

		assert.Equal(t, usecase.RoleMultisig, result.FailedStep)
		require.Len(t, result.Ledger.Records, 3)
		assert.Equal(t, usecase.RoleMultisig, result.Ledger.Records[2].Step)
	})

	t.Run("foreign transaction is reported as drift", func(t *testing.T) {
		f := newRunFixture(0)
		f.chain.skewAfter = 1
		f.store.On("Save", ctx, "addresses/localhost.partial.json", mock.Anything).Return(nil)

		_, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		assert.ErrorIs(t, err, domain.ErrNonceDrift)
		assert.Len(t, f.chain.sent, 1)
	})

	t.Run("persistence failure is distinct from deployment failure", func(t *testing.T) {
		f := newRunFixture(0)
		f.store.On("Save", ctx, "addresses/localhost.json", mock.Anything).Return(errors.New("read-only file system"))

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLedgerPersistenceFailed)
		assert.NotErrorIs(t, err, domain.ErrDeploymentFailed)
		assert.Empty(t, result.FailedStep)
		assert.Len(t, result.Ledger.Records, len(recordedSteps(result.Plan)))
	})

	t.Run("dry run never connects", func(t *testing.T) {
		f := newRunFixture(0)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunNoToken, DryRun: true})
		require.NoError(t, err)
		assert.True(t, result.DryRun)
		assert.NotEmpty(t, result.Plan.Steps)
		assert.Zero(t, f.clients.calls)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("declined confirmation sends nothing", func(t *testing.T) {
		f := newRunFixture(0)
		f.cfg.NonInteractive = false
		f.confirmer.On("Confirm", ctx, mock.AnythingOfType("string")).Return(false, nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunNoToken})
		assert.ErrorIs(t, err, domain.ErrCancelled)
		assert.True(t, result.Cancelled)
		assert.Empty(t, f.chain.sent)
		assert.Nil(t, result.Ledger)
		assert.Equal(t, 1, f.chain.closed)
		f.confirmer.AssertExpectations(t)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("yes skips confirmation", func(t *testing.T) {
		f := newRunFixture(0)
		f.cfg.NonInteractive = false
		f.store.On("Save", ctx, "addresses/localhost-no-token.json", mock.Anything).Return(nil)

		_, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunNoToken, Yes: true})
		require.NoError(t, err)
		f.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("connection failure", func(t *testing.T) {
		f := newRunFixture(0)
		f.clients.err = errors.New("dial tcp: connection refused")

		_, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunFull})
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("gnosis safe proxies are recorded from the creation event", func(t *testing.T) {
		f := newRunFixture(0)
		f.cfg.Parameters.UseGnosisSafe = true
		f.store.On("Save", ctx, "addresses/localhost-no-token.json", mock.Anything).Return(nil)

		result, err := f.useCase().Run(ctx, usecase.RunDeploymentParams{Kind: models.RunNoToken})
		require.NoError(t, err)

		var safe *models.DeploymentRecord
		for i := range result.Ledger.Records {
			if result.Ledger.Records[i].Step == usecase.RoleMultisig {
				safe = &result.Ledger.Records[i]
			}
		}
		require.NotNil(t, safe)
		assert.Equal(t, usecase.ContractGnosisSafeProxy, safe.Contract)
		assert.NotEqual(t, common.Address{}, safe.Address)
	})
}
