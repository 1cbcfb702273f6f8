package usecase_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePlan(t *testing.T) {
	deployStep := func(name string, args ...models.Arg) models.DeploymentStep {
		return models.DeploymentStep{Name: name, Kind: models.StepDeploy, Contract: "C", Args: args}
	}

	t.Run("backward references are valid", func(t *testing.T) {
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			deployStep("a", models.Ref(usecase.RoleDeployer)),
			deployStep("b", models.Ref("a")),
		}}
		assert.NoError(t, usecase.ValidatePlan(plan, usecase.RoleDeployer))
	})

	t.Run("forward reference is rejected", func(t *testing.T) {
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			deployStep("a", models.Ref("b")),
			deployStep("b"),
		}}
		err := usecase.ValidatePlan(plan)
		assert.ErrorIs(t, err, domain.ErrInvalidPlan)
		assert.ErrorIs(t, err, domain.ErrUnresolvedRecipient)

		var unresolved domain.UnresolvedRecipientErr
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "b", unresolved.Role)
		assert.Equal(t, "a", unresolved.Step)
	})

	t.Run("references inside tables are checked", func(t *testing.T) {
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			deployStep("vester", models.List(models.Tuple(models.Ref("treasury"), models.Lit(big.NewInt(1))))),
		}}
		assert.ErrorIs(t, usecase.ValidatePlan(plan), domain.ErrUnresolvedRecipient)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			deployStep("a"),
			deployStep("a"),
		}}
		err := usecase.ValidatePlan(plan)
		assert.ErrorIs(t, err, domain.ErrInvalidPlan)
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("calls need a target", func(t *testing.T) {
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			{Name: "x", Kind: models.StepCall, Contract: "C", Method: "f()"},
		}}
		assert.ErrorIs(t, usecase.ValidatePlan(plan), domain.ErrInvalidPlan)
	})

	t.Run("skipped steps produce without consuming", func(t *testing.T) {
		existing := common.HexToAddress("0x1234")
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{
			{Name: "token", Kind: models.StepDeploy, Contract: "C", Args: []models.Arg{models.Ref("missing")}, Existing: &existing},
			deployStep("user", models.Ref("token")),
		}}
		assert.NoError(t, usecase.ValidatePlan(plan))
	})

	t.Run("roles become referencable", func(t *testing.T) {
		a := deployStep("a")
		a.Roles = []string{"alias"}
		plan := &models.DeploymentPlan{Kind: "test", Steps: []models.DeploymentStep{a, deployStep("b", models.Ref("alias"))}}
		assert.NoError(t, usecase.ValidatePlan(plan))
	})
}

func TestBuildPlan(t *testing.T) {
	stepNames := func(plan *models.DeploymentPlan) []string {
		out := make([]string, len(plan.Steps))
		for i, s := range plan.Steps {
			out[i] = s.Name
		}
		return out
	}

	t.Run("every kind builds a valid plan", func(t *testing.T) {
		params := testParameters()
		params.WrappedNativeToken = addr("0xaaaa")
		for _, kind := range models.AllRunKinds {
			plan, err := usecase.BuildPlan(kind, params)
			require.NoError(t, err, kind)
			assert.Equal(t, kind, plan.Kind)
			assert.NotEmpty(t, plan.Steps, kind)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := usecase.BuildPlan("everything", testParameters())
		assert.ErrorContains(t, err, "unknown plan")
	})

	t.Run("full plan orders governance before configuration", func(t *testing.T) {
		plan, err := usecase.BuildPlan(models.RunFull, testParameters())
		require.NoError(t, err)

		names := stepNames(plan)
		assert.Equal(t, []string{
			usecase.RoleNativeToken, usecase.RoleEVRS, usecase.RoleMultisig, usecase.RoleFoundation,
			usecase.RoleTimelock, usecase.RoleFactory, usecase.RoleRouter, usecase.RoleChef,
		}, names[:8])
		assert.Equal(t, "chef.transferOwnership(address)", names[len(names)-1])
		assert.Contains(t, names, "factory.createPair[0]")
		assert.Contains(t, names, "farmPair[0]")
		assert.Contains(t, names, "chef.addPool[0]")
	})

	t.Run("configured wrapped token is skipped", func(t *testing.T) {
		params := testParameters()
		params.WrappedNativeToken = addr("0xaaaa")
		plan, err := usecase.BuildPlan(models.RunFull, params)
		require.NoError(t, err)
		require.True(t, plan.Steps[0].Skipped())
		assert.Equal(t, common.HexToAddress("0xaaaa"), *plan.Steps[0].Existing)
	})

	t.Run("vester receives the allocation table", func(t *testing.T) {
		plan, err := usecase.BuildPlan(models.RunFull, testParameters())
		require.NoError(t, err)

		var vester models.DeploymentStep
		for _, s := range plan.Steps {
			if s.Name == usecase.RoleVester {
				vester = s
			}
		}
		require.Len(t, vester.Args, 4)
		table := vester.Args[2]
		require.Equal(t, models.ArgList, table.Kind)
		require.Len(t, table.Items, 3)
		chef := table.Items[2]
		assert.Equal(t, []models.Arg{
			models.Ref("chef"),
			models.Lit(new(big.Int).SetUint64(7895)),
			models.Lit(true),
		}, chef.Items)
	})

	t.Run("airdrop larger than supply", func(t *testing.T) {
		params := testParameters()
		params.Token.Airdrop = params.Token.TotalSupply + 1
		_, err := usecase.BuildPlan(models.RunFull, params)
		assert.ErrorContains(t, err, "exceeds total supply")
	})

	t.Run("unknown allocation recipient fails validation", func(t *testing.T) {
		params := testParameters()
		params.VesterAllocations = append(params.VesterAllocations, models.AllocationEntry{Recipient: "nobody", Weight: 1})
		_, err := usecase.BuildPlan(models.RunFull, params)
		assert.ErrorIs(t, err, domain.ErrUnresolvedRecipient)
	})

	t.Run("minichef requires a wrapped token", func(t *testing.T) {
		_, err := usecase.BuildPlan(models.RunMiniChef, testParameters())
		assert.ErrorContains(t, err, "wrapped_native_token")
	})

	t.Run("no-token routes fees to the configured recipient", func(t *testing.T) {
		params := testParameters()
		params.FeeRecipient = addr("0xfee")
		plan, err := usecase.BuildPlan(models.RunNoToken, params)
		require.NoError(t, err)

		last := plan.Steps[len(plan.Steps)-1]
		assert.Equal(t, "factory.setFeeToSetter(address)", last.Name)
		assert.Equal(t, []models.Arg{models.Lit(common.HexToAddress("0xfee"))}, last.Args)
	})
}

func TestMultisigProvisioner(t *testing.T) {
	owners := usecase.OwnerArgs([]common.Address{common.HexToAddress("0xa1"), common.HexToAddress("0xa2")})

	t.Run("builtin deploys a wallet", func(t *testing.T) {
		p := usecase.NewMultisigProvisioner(testParameters())
		assert.Equal(t, "builtin", p.Backend())
		assert.Empty(t, p.Setup())

		steps := p.Provision("multisig", owners, 2)
		require.Len(t, steps, 1)
		assert.Equal(t, models.StepDeploy, steps[0].Kind)
		assert.Equal(t, usecase.ContractMultiSigWallet, steps[0].Contract)
		assert.Equal(t, models.List(owners...), steps[0].Args[0])
		assert.Equal(t, models.Lit(big.NewInt(2)), steps[0].Args[1])
		assert.Equal(t, models.Lit(big.NewInt(0)), steps[0].Args[2])
	})

	t.Run("gnosis creates a proxy through the factory", func(t *testing.T) {
		params := testParameters()
		params.UseGnosisSafe = true
		p := usecase.NewMultisigProvisioner(params)
		assert.Equal(t, "gnosis", p.Backend())

		setup := p.Setup()
		require.Len(t, setup, 2)
		for _, s := range setup {
			assert.True(t, s.Skipped())
		}

		steps := p.Provision("multisig", owners, 1)
		require.Len(t, steps, 1)
		step := steps[0]
		assert.Equal(t, models.StepCall, step.Kind)
		assert.Equal(t, "createProxyWithNonce(address,bytes,uint256)", step.Method)
		assert.Equal(t, usecase.ContractGnosisSafeProxy, step.RecordedContract())
		assert.True(t, step.Records())
		require.NotNil(t, step.Output)
		assert.Equal(t, "ProxyCreation", step.Output.Event)

		initializer := step.Args[1]
		assert.Equal(t, models.ArgCalldata, initializer.Kind)
		assert.Equal(t, usecase.ContractGnosisSafe, initializer.Contract)

		// salt is stable per name and differs between names
		again := p.Provision("multisig", owners, 1)[0]
		other := p.Provision("foundation", owners, 1)[0]
		assert.Equal(t, step.Args[2], again.Args[2])
		assert.NotEqual(t, step.Args[2], other.Args[2])
	})
}

func TestResolveArgs(t *testing.T) {
	book := usecase.NewAddressBook()
	require.NoError(t, book.Bind(common.HexToAddress("0x01"), "treasury"))
	require.NoError(t, book.Bind(common.HexToAddress("0x02"), "chef", "minichef"))

	t.Run("resolves nested tables", func(t *testing.T) {
		args := []models.Arg{
			models.List(
				models.Tuple(models.Ref("treasury"), models.Lit(big.NewInt(10)), models.Lit(false)),
				models.Tuple(models.Ref("minichef"), models.Lit(big.NewInt(90)), models.Lit(true)),
			),
		}
		values, err := usecase.ResolveArgs(args, book, newFakeChain(0))
		require.NoError(t, err)
		assert.Equal(t, []any{[]any{
			[]any{common.HexToAddress("0x01"), big.NewInt(10), false},
			[]any{common.HexToAddress("0x02"), big.NewInt(90), true},
		}}, values)

		rendered := usecase.RenderArgs(values)
		assert.Equal(t, []any{[]any{
			[]any{common.HexToAddress("0x01").Hex(), "10", false},
			[]any{common.HexToAddress("0x02").Hex(), "90", true},
		}}, rendered)
	})

	t.Run("encodes calldata", func(t *testing.T) {
		values, err := usecase.ResolveArgs([]models.Arg{models.Calldata("Safe", "setup()", models.Ref("treasury"))}, book, newFakeChain(0))
		require.NoError(t, err)
		assert.Equal(t, []byte("Safe.setup()"), values[0])
		assert.Equal(t, []any{"0x536166652e73657475702829"}, usecase.RenderArgs(values))
	})

	t.Run("unbound reference", func(t *testing.T) {
		_, err := usecase.ResolveArgs([]models.Arg{models.Ref("nobody")}, book, newFakeChain(0))
		assert.ErrorIs(t, err, domain.ErrUnresolvedRecipient)
	})
}

func TestAddressBook(t *testing.T) {
	book := usecase.NewAddressBook()
	require.NoError(t, book.Bind(common.HexToAddress("0x01"), "evrs", "token"))

	assert.True(t, book.Has("token"))
	assert.Equal(t, []string{"evrs", "token"}, book.Names())

	// rebinding the same address is harmless
	assert.NoError(t, book.Bind(common.HexToAddress("0x01"), "evrs"))
	assert.Error(t, book.Bind(common.HexToAddress("0x02"), "evrs"))

	got, err := book.Resolve("token")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x01"), got)
}
