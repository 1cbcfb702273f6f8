package config

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// DefaultMaxGas is the gas limit used for steps that need an explicit one
const DefaultMaxGas uint64 = 4_000_000

// NetworkParameters is the static per-network configuration a plan is built from
type NetworkParameters struct {
	Network         string
	NativeTokenName string

	Token             TokenParameters
	TimelockDelay     uint64
	ProposalThreshold uint64

	Multisig           MultisigParameters
	FoundationMultisig MultisigParameters
	UseGnosisSafe      bool
	GnosisSafe         GnosisSafeParameters

	// Optional addresses; nil triggers the conditional deployment
	WrappedNativeToken *common.Address
	Multicall          *common.Address
	FeeRecipient       *common.Address

	EVRSStakingWeight  uint64
	WethEVRSFarmWeight uint64
	InitialFarms       []models.FarmSpec
	Farms              []models.FarmSpec

	VesterAllocations   []models.AllocationEntry
	RevenueDistribution []models.AllocationEntry

	Existing ExistingContracts
	MaxGas   uint64
}

// TokenParameters describes the governance token; amounts are whole tokens
type TokenParameters struct {
	Symbol      string
	Name        string
	TotalSupply uint64
	Airdrop     uint64
}

// MultisigParameters configures one collectively controlled account
type MultisigParameters struct {
	Owners    []common.Address
	Threshold uint64
}

// GnosisSafeParameters locates the Safe contracts on networks that use them
type GnosisSafeParameters struct {
	Singleton       common.Address
	ProxyFactory    common.Address
	FallbackHandler common.Address
}

// ExistingContracts are addresses from earlier runs used by follow-up plans
type ExistingContracts struct {
	EVRS     *common.Address
	MiniChef *common.Address
	Factory  *common.Address
	Router   *common.Address
}

// WeiAmount scales a whole-token amount by 18 decimals
func WeiAmount(whole uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}
