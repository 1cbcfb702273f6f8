package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ParametersYAML is the raw constants/<network>.yaml structure
type ParametersYAML struct {
	NativeTokenName    string           `yaml:"native_token_name"`
	Token              TokenYAML        `yaml:"token"`
	TimelockDelay      uint64           `yaml:"timelock_delay"`
	ProposalThreshold  uint64           `yaml:"proposal_threshold"`
	Multisig           MultisigYAML     `yaml:"multisig"`
	FoundationMultisig MultisigYAML     `yaml:"foundation_multisig"`
	UseGnosisSafe      bool             `yaml:"use_gnosis_safe"`
	GnosisSafe         GnosisSafeYAML   `yaml:"gnosis_safe"`
	WrappedNativeToken string           `yaml:"wrapped_native_token"`
	Multicall          string           `yaml:"multicall"`
	FeeRecipient       string           `yaml:"fee_recipient"`
	EVRSStaking        uint64           `yaml:"evrs_staking_allocation"`
	WethEVRSFarm       uint64           `yaml:"weth_evrs_farm_allocation"`
	InitialFarms       []FarmYAML       `yaml:"initial_farms"`
	Farms              []FarmYAML       `yaml:"farms"`
	VesterAllocations  []AllocationYAML `yaml:"vester_allocations"`
	RevenueDistrib     []AllocationYAML `yaml:"revenue_distribution"`
	Existing           ExistingYAML     `yaml:"existing"`
	MaxGas             uint64           `yaml:"max_gas"`
}

type TokenYAML struct {
	Symbol      string `yaml:"symbol"`
	Name        string `yaml:"name"`
	TotalSupply uint64 `yaml:"total_supply"`
	Airdrop     uint64 `yaml:"airdrop"`
}

type MultisigYAML struct {
	Owners    []string `yaml:"owners"`
	Threshold uint64   `yaml:"threshold"`
}

type GnosisSafeYAML struct {
	Singleton       string `yaml:"singleton"`
	ProxyFactory    string `yaml:"proxy_factory"`
	FallbackHandler string `yaml:"fallback_handler"`
}

type FarmYAML struct {
	TokenA string `yaml:"token_a"`
	TokenB string `yaml:"token_b"`
	Weight uint64 `yaml:"weight"`
}

type AllocationYAML struct {
	Recipient  string `yaml:"recipient"`
	Allocation uint64 `yaml:"allocation"`
	IsMiniChef bool   `yaml:"is_mini_chef"`
}

type ExistingYAML struct {
	EVRS     string `yaml:"evrs"`
	MiniChef string `yaml:"mini_chef"`
	Factory  string `yaml:"factory"`
	Router   string `yaml:"router"`
}

// ParametersPath returns the parameters file for a network, preferring .yaml
func ParametersPath(dir, network string) string {
	yml := filepath.Join(dir, network+".yml")
	if _, err := os.Stat(yml); err == nil {
		return yml
	}
	return filepath.Join(dir, network+".yaml")
}

// LoadNetworkParameters reads and validates the parameters for network
func LoadNetworkParameters(dir, network string) (*config.NetworkParameters, error) {
	path := ParametersPath(dir, network)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw ParametersYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	params, err := raw.toDomain(network)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters in %s: %w", path, err)
	}
	return params, nil
}

func (r ParametersYAML) toDomain(network string) (*config.NetworkParameters, error) {
	p := &config.NetworkParameters{
		Network:           network,
		NativeTokenName:   r.NativeTokenName,
		TimelockDelay:     r.TimelockDelay,
		ProposalThreshold: r.ProposalThreshold,
		UseGnosisSafe:     r.UseGnosisSafe,
		Token: config.TokenParameters{
			Symbol:      r.Token.Symbol,
			Name:        r.Token.Name,
			TotalSupply: r.Token.TotalSupply,
			Airdrop:     r.Token.Airdrop,
		},
		EVRSStakingWeight:  r.EVRSStaking,
		WethEVRSFarmWeight: r.WethEVRSFarm,
		MaxGas:             r.MaxGas,
	}
	if p.MaxGas == 0 {
		p.MaxGas = config.DefaultMaxGas
	}

	var err error
	if p.Multisig, err = r.Multisig.toDomain("multisig"); err != nil {
		return nil, err
	}
	if p.FoundationMultisig, err = r.FoundationMultisig.toDomain("foundation_multisig"); err != nil {
		return nil, err
	}

	if r.UseGnosisSafe {
		if p.GnosisSafe, err = r.GnosisSafe.toDomain(); err != nil {
			return nil, err
		}
	}

	optional := []struct {
		field string
		value string
		dest  **common.Address
	}{
		{"wrapped_native_token", r.WrappedNativeToken, &p.WrappedNativeToken},
		{"multicall", r.Multicall, &p.Multicall},
		{"fee_recipient", r.FeeRecipient, &p.FeeRecipient},
		{"existing.evrs", r.Existing.EVRS, &p.Existing.EVRS},
		{"existing.mini_chef", r.Existing.MiniChef, &p.Existing.MiniChef},
		{"existing.factory", r.Existing.Factory, &p.Existing.Factory},
		{"existing.router", r.Existing.Router, &p.Existing.Router},
	}
	for _, o := range optional {
		if *o.dest, err = optionalAddress(o.field, o.value); err != nil {
			return nil, err
		}
	}

	farm := func(f FarmYAML, _ int) models.FarmSpec {
		return models.FarmSpec{TokenA: f.TokenA, TokenB: f.TokenB, Weight: f.Weight}
	}
	p.InitialFarms = lo.Map(r.InitialFarms, farm)
	p.Farms = lo.Map(r.Farms, farm)

	allocation := func(a AllocationYAML, _ int) models.AllocationEntry {
		return models.AllocationEntry{Recipient: a.Recipient, Weight: a.Allocation, Special: a.IsMiniChef}
	}
	p.VesterAllocations = lo.Map(r.VesterAllocations, allocation)
	p.RevenueDistribution = lo.Map(r.RevenueDistrib, allocation)

	if n := lo.CountBy(p.VesterAllocations, func(a models.AllocationEntry) bool { return a.Special }); n > 1 {
		return nil, fmt.Errorf("vester_allocations: %d entries are marked is_mini_chef, at most one is allowed", n)
	}
	for i, a := range append(append([]models.AllocationEntry{}, p.VesterAllocations...), p.RevenueDistribution...) {
		if a.Recipient == "" {
			return nil, fmt.Errorf("allocation entry %d has no recipient", i)
		}
	}
	return p, nil
}

func (m MultisigYAML) toDomain(field string) (config.MultisigParameters, error) {
	out := config.MultisigParameters{Threshold: m.Threshold}
	if len(m.Owners) == 0 {
		return out, fmt.Errorf("%s.owners must not be empty", field)
	}
	for i, o := range m.Owners {
		if !common.IsHexAddress(o) {
			return out, fmt.Errorf("%s.owners[%d]: %q is not an address", field, i, o)
		}
		out.Owners = append(out.Owners, common.HexToAddress(o))
	}
	if m.Threshold == 0 || m.Threshold > uint64(len(m.Owners)) {
		return out, fmt.Errorf("%s.threshold must be between 1 and %d, got %d", field, len(m.Owners), m.Threshold)
	}
	return out, nil
}

func (g GnosisSafeYAML) toDomain() (config.GnosisSafeParameters, error) {
	var out config.GnosisSafeParameters
	fields := []struct {
		name  string
		value string
		dest  *common.Address
	}{
		{"gnosis_safe.singleton", g.Singleton, &out.Singleton},
		{"gnosis_safe.proxy_factory", g.ProxyFactory, &out.ProxyFactory},
		{"gnosis_safe.fallback_handler", g.FallbackHandler, &out.FallbackHandler},
	}
	for _, f := range fields {
		addr, err := optionalAddress(f.name, f.value)
		if err != nil {
			return out, err
		}
		if addr == nil {
			return out, fmt.Errorf("%s is required when use_gnosis_safe is set", f.name)
		}
		*f.dest = *addr
	}
	return out, nil
}

var errNotAddress = errors.New("not an address")

func optionalAddress(field, value string) (*common.Address, error) {
	if value == "" {
		return nil, nil
	}
	if !common.IsHexAddress(value) {
		return nil, fmt.Errorf("%s: %q is %w", field, value, errNotAddress)
	}
	addr := common.HexToAddress(value)
	return &addr, nil
}
