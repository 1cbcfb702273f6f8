package usecase

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// Artifact names of the Everest contracts
const (
	ContractEVRS                   = "Evrs"
	ContractMultiSigWallet         = "MultiSigWalletWithDailyLimit"
	ContractGnosisSafe             = "GnosisSafe"
	ContractGnosisSafeProxyFactory = "GnosisSafeProxyFactory"
	ContractGnosisSafeProxy        = "GnosisSafeProxy"
	ContractTimelock               = "Timelock"
	ContractFactory                = "EverestFactory"
	ContractRouter                 = "EverestRouter"
	ContractMiniChef               = "MiniChefV2"
	ContractTreasury               = "CommunityTreasury"
	ContractStakingRewards         = "StakingRewards"
	ContractAirdrop                = "Airdrop"
	ContractVester                 = "TreasuryVester"
	ContractRevenueDistributor     = "RevenueDistributor"
	ContractFeeCollector           = "EverestFeeCollector"
	ContractDummyERC20             = "DummyERC20"
	ContractMulticall              = "Multicall"
	ContractVoteCalculator         = "EverestVoteCalculator"
	ContractPair                   = "EverestPair"
	ContractMigrationRouter        = "EverestBridgeMigrationRouter"
)

// Role names steps publish their addresses under. Allocation tables refer
// to these names.
const (
	RoleNativeToken        = "nativeToken"
	RoleEVRS               = "evrs"
	RoleMultisig           = "multisig"
	RoleFoundation         = "foundation"
	RoleTimelock           = "timelock"
	RoleFactory            = "factory"
	RoleRouter             = "router"
	RoleChef               = "chef"
	RoleTreasury           = "treasury"
	RoleStaking            = "staking"
	RoleAirdrop            = "airdrop"
	RoleVester             = "vester"
	RoleJointMultisig      = "jointMultisig"
	RoleRevenueDistributor = "revenueDistributor"
	RoleFeeCollector       = "feeCollector"
	RoleDummy              = "dummyERC20"
	RoleMulticall          = "multicall"
	RoleEVRSPair           = "evrsPair"
)

const (
	dummySupply    = 100
	feeCollectorID = 0
)

// BuildPlan produces the ordered plan for a run kind
func BuildPlan(kind models.RunKind, params *config.NetworkParameters) (*models.DeploymentPlan, error) {
	if params == nil {
		return nil, fmt.Errorf("no network parameters loaded")
	}
	b := &planBuilder{params: params, multisig: NewMultisigProvisioner(params)}

	var err error
	switch kind {
	case models.RunFull:
		err = b.full()
	case models.RunMiniChef:
		err = b.miniChef()
	case models.RunNoToken:
		err = b.noToken()
	case models.RunStakingRewards:
		err = b.stakingRewards()
	case models.RunVoteCalculator:
		err = b.voteCalculator()
	case models.RunFarms:
		err = b.farms()
	default:
		return nil, fmt.Errorf("unknown plan %q (available: %v)", kind, models.AllRunKinds)
	}
	if err != nil {
		return nil, err
	}

	plan := &models.DeploymentPlan{Kind: kind, Network: params.Network, Steps: b.steps}
	if err := ValidatePlan(plan, RoleDeployer); err != nil {
		return nil, err
	}
	return plan, nil
}

type planBuilder struct {
	params   *config.NetworkParameters
	multisig MultisigProvisioner
	steps    []models.DeploymentStep
}

func (b *planBuilder) add(steps ...models.DeploymentStep) {
	b.steps = append(b.steps, steps...)
}

func (b *planBuilder) maxGas() uint64 {
	if b.params.MaxGas == 0 {
		return config.DefaultMaxGas
	}
	return b.params.MaxGas
}

func deploy(name, contract string, args ...models.Arg) models.DeploymentStep {
	return models.DeploymentStep{Name: name, Kind: models.StepDeploy, Contract: contract, Args: args}
}

func existing(name, contract string, addr common.Address) models.DeploymentStep {
	return models.DeploymentStep{Name: name, Kind: models.StepDeploy, Contract: contract, Existing: &addr}
}

func call(target, contract, method string, args ...models.Arg) models.DeploymentStep {
	return models.DeploymentStep{
		Name:     fmt.Sprintf("%s.%s", target, method),
		Kind:     models.StepCall,
		Contract: contract,
		Target:   target,
		Method:   method,
		Args:     args,
	}
}

func query(name, target, contract, method string, args ...models.Arg) models.DeploymentStep {
	return models.DeploymentStep{
		Name:     name,
		Kind:     models.StepQuery,
		Contract: contract,
		Target:   target,
		Method:   method,
		Args:     args,
		Output:   &models.Output{Index: 0},
	}
}

func withGas(step models.DeploymentStep, gas uint64) models.DeploymentStep {
	step.Overrides.GasLimit = gas
	return step
}

func named(step models.DeploymentStep, name string) models.DeploymentStep {
	step.Name = name
	return step
}

func uint256(v uint64) models.Arg {
	return models.Lit(new(big.Int).SetUint64(v))
}

func wei(whole uint64) models.Arg {
	return models.Lit(config.WeiAmount(whole))
}

// tokenArg accepts either a hex address or a role name
func tokenArg(token string) models.Arg {
	if common.IsHexAddress(token) {
		return models.Lit(common.HexToAddress(token))
	}
	return models.Ref(token)
}

func allocationTable(entries []models.AllocationEntry, withSpecial bool) models.Arg {
	rows := make([]models.Arg, len(entries))
	for i, e := range entries {
		items := []models.Arg{models.Ref(e.Recipient), uint256(e.Weight)}
		if withSpecial {
			items = append(items, models.Lit(e.Special))
		}
		rows[i] = models.Tuple(items...)
	}
	return models.List(rows...)
}

func (b *planBuilder) wrappedNativeToken() {
	name := b.params.NativeTokenName
	if name == "" {
		name = "ICY"
	}
	step := deploy(RoleNativeToken, "W"+name)
	if b.params.WrappedNativeToken != nil {
		step.Existing = b.params.WrappedNativeToken
	}
	b.add(step)
}

func (b *planBuilder) provision(name string, owners []models.Arg, threshold uint64) {
	b.add(b.multisig.Provision(name, owners, threshold)...)
}

func (b *planBuilder) addFarm(index int, farm models.FarmSpec) {
	pair := fmt.Sprintf("farmPair[%d]", index)
	b.add(
		named(call(RoleFactory, ContractFactory, "createPair(address,address)", tokenArg(farm.TokenA), tokenArg(farm.TokenB)),
			fmt.Sprintf("factory.createPair[%d]", index)),
		query(pair, RoleFactory, ContractFactory, "getPair(address,address)", tokenArg(farm.TokenA), tokenArg(farm.TokenB)),
		named(withGas(call(RoleChef, ContractMiniChef, "addPool(uint256,address,address)",
			uint256(farm.Weight), models.Ref(pair), models.Lit(common.Address{})), b.maxGas()),
			fmt.Sprintf("chef.addPool[%d]", index)),
	)
}

func (b *planBuilder) full() error {
	p := b.params
	if p.Token.Airdrop > p.Token.TotalSupply {
		return fmt.Errorf("airdrop amount %d exceeds total supply %d", p.Token.Airdrop, p.Token.TotalSupply)
	}
	if len(p.Multisig.Owners) == 0 {
		return fmt.Errorf("multisig owners are not configured")
	}
	if len(p.FoundationMultisig.Owners) == 0 {
		return fmt.Errorf("foundation multisig owners are not configured")
	}

	b.wrappedNativeToken()
	b.add(b.multisig.Setup()...)

	// Governance
	b.add(deploy(RoleEVRS, ContractEVRS,
		wei(p.Token.TotalSupply), wei(p.Token.Airdrop), models.Lit(p.Token.Symbol), models.Lit(p.Token.Name)))
	b.provision(RoleMultisig, OwnerArgs(p.Multisig.Owners), p.Multisig.Threshold)
	b.provision(RoleFoundation, OwnerArgs(p.FoundationMultisig.Owners), p.FoundationMultisig.Threshold)
	b.add(
		withGas(deploy(RoleTimelock, ContractTimelock, models.Ref(RoleMultisig), uint256(p.TimelockDelay)), b.maxGas()),
		deploy(RoleFactory, ContractFactory, models.Ref(RoleDeployer)),
		deploy(RoleRouter, ContractRouter, models.Ref(RoleFactory), models.Ref(RoleNativeToken)),
		deploy(RoleChef, ContractMiniChef, models.Ref(RoleEVRS), models.Ref(RoleDeployer)),
		deploy(RoleTreasury, ContractTreasury, models.Ref(RoleEVRS)),
		deploy(RoleStaking, ContractStakingRewards, models.Ref(RoleEVRS), models.Ref(RoleEVRS)),
		withGas(deploy(RoleAirdrop, ContractAirdrop,
			wei(p.Token.Airdrop), models.Ref(RoleEVRS), models.Ref(RoleMultisig), models.Ref(RoleTreasury)), b.maxGas()),
		deploy(RoleVester, ContractVester,
			models.Ref(RoleEVRS),
			wei(p.Token.TotalSupply-p.Token.Airdrop),
			allocationTable(p.VesterAllocations, true),
			models.Ref(RoleMultisig)),
	)

	// Fee collector
	b.provision(RoleJointMultisig, []models.Arg{models.Ref(RoleMultisig), models.Ref(RoleFoundation)}, 2)
	b.add(
		withGas(deploy(RoleRevenueDistributor, ContractRevenueDistributor,
			allocationTable(p.RevenueDistribution, false)), b.maxGas()),
		deploy(RoleFeeCollector, ContractFeeCollector,
			models.Ref(RoleStaking),
			models.Ref(RoleRouter),
			models.Ref(RoleChef),
			uint256(feeCollectorID),
			models.Ref(RoleTimelock),
			models.Ref(RoleNativeToken),
			models.Ref(RoleRevenueDistributor)),
		deploy(RoleDummy, ContractDummyERC20,
			models.Lit("Dummy ERC20"), models.Lit("EVRSL"), models.Ref(RoleDeployer), uint256(dummySupply)),
	)

	// Configuration
	b.add(
		call(RoleTreasury, ContractTreasury, "transferOwnership(address)", models.Ref(RoleTimelock)),
		call(RoleEVRS, ContractEVRS, "setMinter(address)", models.Ref(RoleVester)),
		call(RoleEVRS, ContractEVRS, "setAdmin(address)", models.Ref(RoleTimelock)),
		call(RoleEVRS, ContractEVRS, "transfer(address,uint256)", models.Ref(RoleAirdrop), wei(p.Token.Airdrop)),
		call(RoleVester, ContractVester, "transferOwnership(address)", models.Ref(RoleTimelock)),
		call(RoleRevenueDistributor, ContractRevenueDistributor, "transferOwnership(address)", models.Ref(RoleJointMultisig)),
		call(RoleFeeCollector, ContractFeeCollector, "transferOwnership(address)", models.Ref(RoleMultisig)),
		call(RoleDummy, ContractDummyERC20, "renounceOwnership()"),
		call(RoleChef, ContractMiniChef, "addPool(uint256,address,address)",
			uint256(p.EVRSStakingWeight), models.Ref(RoleDummy), models.Lit(common.Address{})),
		call(RoleDummy, ContractDummyERC20, "approve(address,uint256)", models.Ref(RoleChef), uint256(dummySupply)),
		withGas(call(RoleChef, ContractMiniChef, "deposit(uint256,uint256,address)",
			uint256(feeCollectorID), uint256(dummySupply), models.Ref(RoleFeeCollector)), b.maxGas()),
		call(RoleFactory, ContractFactory, "setFeeTo(address)", models.Ref(RoleFeeCollector)),
		call(RoleFactory, ContractFactory, "setFeeToSetter(address)", models.Ref(RoleMultisig)),
	)

	// MiniChef farms
	b.add(
		call(RoleFactory, ContractFactory, "createPair(address,address)", models.Ref(RoleEVRS), models.Ref(RoleNativeToken)),
		query(RoleEVRSPair, RoleFactory, ContractFactory, "getPair(address,address)", models.Ref(RoleEVRS), models.Ref(RoleNativeToken)),
		named(withGas(call(RoleChef, ContractMiniChef, "addPool(uint256,address,address)",
			uint256(p.WethEVRSFarmWeight), models.Ref(RoleEVRSPair), models.Lit(common.Address{})), b.maxGas()),
			"chef.addPool(evrsPair)"),
	)
	for i, farm := range p.InitialFarms {
		b.addFarm(i, farm)
	}
	poolInfos := query("chef.poolInfos", RoleChef, ContractMiniChef, "poolInfos()")
	poolInfos.Output = nil
	b.add(
		poolInfos,
		call(RoleChef, ContractMiniChef, "addFunder(address)", models.Ref(RoleVester)),
		call(RoleChef, ContractMiniChef, "transferOwnership(address)", models.Ref(RoleMultisig)),
	)
	return nil
}

func (b *planBuilder) miniChef() error {
	p := b.params
	if p.WrappedNativeToken == nil {
		return fmt.Errorf("the minichef plan requires wrapped_native_token to be configured")
	}
	b.add(
		deploy(RoleDummy, ContractDummyERC20,
			models.Lit("Dummy Everest LP"), models.Lit("EVRSL"), models.Ref(RoleDeployer), uint256(dummySupply)),
		deploy(RoleChef, ContractMiniChef, models.Lit(*p.WrappedNativeToken), models.Ref(RoleDeployer)),
		call(RoleDummy, ContractDummyERC20, "renounceOwnership()"),
		call(RoleChef, ContractMiniChef, "addPool(uint256,address,address)",
			uint256(p.WethEVRSFarmWeight), models.Ref(RoleDummy), models.Lit(common.Address{})),
		call(RoleDummy, ContractDummyERC20, "approve(address,uint256)", models.Ref(RoleChef), uint256(dummySupply)),
		withGas(call(RoleChef, ContractMiniChef, "deposit(uint256,uint256,address)",
			uint256(0), uint256(dummySupply), models.Ref(RoleDeployer)), b.maxGas()),
		call(RoleChef, ContractMiniChef, "addFunder(address)", models.Ref(RoleDeployer)),
	)
	return nil
}

func (b *planBuilder) noToken() error {
	p := b.params
	if len(p.Multisig.Owners) == 0 {
		return fmt.Errorf("multisig owners are not configured")
	}

	b.wrappedNativeToken()
	multicall := withGas(deploy(RoleMulticall, ContractMulticall), b.maxGas())
	multicall.Existing = p.Multicall
	b.add(multicall)
	b.add(b.multisig.Setup()...)
	b.provision(RoleMultisig, OwnerArgs(p.Multisig.Owners), p.Multisig.Threshold)

	feeRecipient := models.Ref(RoleMultisig)
	if p.FeeRecipient != nil {
		feeRecipient = models.Lit(*p.FeeRecipient)
	}
	b.add(
		deploy(RoleFactory, ContractFactory, models.Ref(RoleDeployer)),
		deploy(RoleRouter, ContractRouter, models.Ref(RoleFactory), models.Ref(RoleNativeToken)),
		call(RoleFactory, ContractFactory, "setFeeTo(address)", feeRecipient),
		call(RoleFactory, ContractFactory, "setFeeToSetter(address)", feeRecipient),
	)
	return nil
}

func (b *planBuilder) stakingRewards() error {
	p := b.params
	if p.WrappedNativeToken == nil || p.Existing.EVRS == nil {
		return fmt.Errorf("the staking-rewards plan requires wrapped_native_token and existing.evrs")
	}
	b.add(
		existing(RoleNativeToken, "WrappedNativeToken", *p.WrappedNativeToken),
		existing(RoleEVRS, ContractEVRS, *p.Existing.EVRS),
		deploy(RoleStaking, ContractStakingRewards, models.Ref(RoleNativeToken), models.Ref(RoleEVRS)),
	)
	return nil
}

func (b *planBuilder) voteCalculator() error {
	p := b.params
	if p.Existing.EVRS == nil || p.Existing.MiniChef == nil {
		return fmt.Errorf("the vote-calculator plan requires existing.evrs and existing.mini_chef")
	}
	b.add(
		existing(RoleEVRS, ContractEVRS, *p.Existing.EVRS),
		existing(RoleChef, ContractMiniChef, *p.Existing.MiniChef),
		deploy("voteCalculator", ContractVoteCalculator, models.Ref(RoleEVRS), models.Ref(RoleChef)),
	)
	return nil
}

func (b *planBuilder) farms() error {
	p := b.params
	if p.Existing.Factory == nil || p.Existing.MiniChef == nil {
		return fmt.Errorf("the farms plan requires existing.factory and existing.mini_chef")
	}
	if len(p.Farms) == 0 {
		return fmt.Errorf("no farms configured")
	}
	b.add(
		existing(RoleFactory, ContractFactory, *p.Existing.Factory),
		existing(RoleChef, ContractMiniChef, *p.Existing.MiniChef),
	)
	if p.WrappedNativeToken != nil {
		b.add(existing(RoleNativeToken, "WrappedNativeToken", *p.WrappedNativeToken))
	}
	if p.Existing.EVRS != nil {
		b.add(existing(RoleEVRS, ContractEVRS, *p.Existing.EVRS))
	}
	for i, farm := range p.Farms {
		b.addFarm(i, farm)
	}
	return nil
}
