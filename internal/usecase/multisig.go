package usecase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// MultisigProvisioner turns a multisig requirement into plan steps.
// The backend is chosen once, when the plan is built.
type MultisigProvisioner interface {
	Backend() string
	// Setup returns steps that must precede the first Provision
	Setup() []models.DeploymentStep
	// Provision returns the steps that create a multisig bound under name
	Provision(name string, owners []models.Arg, threshold uint64) []models.DeploymentStep
}

// NewMultisigProvisioner selects the backend from the network parameters
func NewMultisigProvisioner(params *config.NetworkParameters) MultisigProvisioner {
	if params.UseGnosisSafe {
		return &GnosisSafeProvisioner{safe: params.GnosisSafe}
	}
	return BuiltinMultisigProvisioner{}
}

// OwnerArgs wraps literal owner addresses
func OwnerArgs(owners []common.Address) []models.Arg {
	args := make([]models.Arg, len(owners))
	for i, o := range owners {
		args[i] = models.Lit(o)
	}
	return args
}

// BuiltinMultisigProvisioner deploys MultiSigWalletWithDailyLimit with a zero daily limit
type BuiltinMultisigProvisioner struct{}

func (BuiltinMultisigProvisioner) Backend() string { return "builtin" }

func (BuiltinMultisigProvisioner) Setup() []models.DeploymentStep { return nil }

func (BuiltinMultisigProvisioner) Provision(name string, owners []models.Arg, threshold uint64) []models.DeploymentStep {
	return []models.DeploymentStep{{
		Name:     name,
		Kind:     models.StepDeploy,
		Contract: ContractMultiSigWallet,
		Args: []models.Arg{
			models.List(owners...),
			models.Lit(new(big.Int).SetUint64(threshold)),
			models.Lit(big.NewInt(0)),
		},
	}}
}

const (
	stepSafeSingleton    = "gnosisSafeSingleton"
	stepSafeProxyFactory = "gnosisSafeProxyFactory"

	safeSetupSignature = "setup(address[],uint256,address,bytes,address,address,uint256,address)"
)

// GnosisSafeProvisioner creates Safe proxies through the configured proxy factory
type GnosisSafeProvisioner struct {
	safe config.GnosisSafeParameters
}

func (p *GnosisSafeProvisioner) Backend() string { return "gnosis" }

// Setup binds the pre-deployed Safe singleton and proxy factory
func (p *GnosisSafeProvisioner) Setup() []models.DeploymentStep {
	singleton := p.safe.Singleton
	factory := p.safe.ProxyFactory
	return []models.DeploymentStep{
		{Name: stepSafeSingleton, Kind: models.StepDeploy, Contract: ContractGnosisSafe, Existing: &singleton},
		{Name: stepSafeProxyFactory, Kind: models.StepDeploy, Contract: ContractGnosisSafeProxyFactory, Existing: &factory},
	}
}

func (p *GnosisSafeProvisioner) Provision(name string, owners []models.Arg, threshold uint64) []models.DeploymentStep {
	zero := models.Lit(common.Address{})
	initializer := models.Calldata(ContractGnosisSafe, safeSetupSignature,
		models.List(owners...),
		models.Lit(new(big.Int).SetUint64(threshold)),
		zero,
		models.Lit([]byte{}),
		models.Lit(p.safe.FallbackHandler),
		zero,
		models.Lit(big.NewInt(0)),
		zero,
	)

	return []models.DeploymentStep{{
		Name:     name,
		Kind:     models.StepCall,
		Contract: ContractGnosisSafeProxyFactory,
		Target:   stepSafeProxyFactory,
		Method:   "createProxyWithNonce(address,bytes,uint256)",
		Args: []models.Arg{
			models.Ref(stepSafeSingleton),
			initializer,
			models.Lit(saltNonce(name)),
		},
		Output:  &models.Output{Event: "ProxyCreation", Field: "proxy"},
		Creates: ContractGnosisSafeProxy,
	}}
}

// saltNonce derives a stable CREATE2 salt from the multisig's name
func saltNonce(name string) *big.Int {
	return new(big.Int).SetBytes(crypto.Keccak256([]byte("everest:" + name))[:8])
}
