package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// StepKind represents what a plan step does on chain
type StepKind string

const (
	// StepDeploy creates a contract from an artifact
	StepDeploy StepKind = "deploy"
	// StepCall sends a state-changing transaction to an existing contract
	StepCall StepKind = "call"
	// StepQuery performs a read-only call and never consumes a nonce
	StepQuery StepKind = "query"
)

// SendsTransaction reports whether the step consumes a nonce
func (k StepKind) SendsTransaction() bool {
	return k == StepDeploy || k == StepCall
}

// ArgKind represents how an argument value is obtained
type ArgKind string

const (
	ArgLiteral  ArgKind = "literal"
	ArgRef      ArgKind = "ref"
	ArgList     ArgKind = "list"
	ArgTuple    ArgKind = "tuple"
	ArgCalldata ArgKind = "calldata"
)

// Arg is a single typed argument to a constructor or method.
// References are resolved against the address book at execution time.
type Arg struct {
	Kind  ArgKind `json:"kind"`
	Value any     `json:"value,omitempty"`
	Ref   string  `json:"ref,omitempty"`
	Items []Arg   `json:"items,omitempty"`

	// Calldata arguments encode Method on Contract's ABI with Items
	Contract string `json:"contract,omitempty"`
	Method   string `json:"method,omitempty"`
}

// Lit wraps a literal value (address, integer, bool, string or bytes)
func Lit(v any) Arg { return Arg{Kind: ArgLiteral, Value: v} }

// Ref references the address produced by an earlier step or bound to a role
func Ref(name string) Arg { return Arg{Kind: ArgRef, Ref: name} }

// List builds an array argument
func List(items ...Arg) Arg { return Arg{Kind: ArgList, Items: items} }

// Tuple builds a struct argument
func Tuple(items ...Arg) Arg { return Arg{Kind: ArgTuple, Items: items} }

// Calldata builds an ABI-encoded call to method on contract as a bytes argument
func Calldata(contract, method string, items ...Arg) Arg {
	return Arg{Kind: ArgCalldata, Contract: contract, Method: method, Items: items}
}

// Refs returns every reference name used by the argument, depth first
func (a Arg) Refs() []string {
	switch a.Kind {
	case ArgRef:
		return []string{a.Ref}
	case ArgList, ArgTuple, ArgCalldata:
		var refs []string
		for _, item := range a.Items {
			refs = append(refs, item.Refs()...)
		}
		return refs
	default:
		return nil
	}
}

// Overrides carries per-step transaction settings
type Overrides struct {
	GasLimit uint64 `json:"gasLimit,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Output describes how a call or query yields an address.
// For calls the address is read from an emitted event field; for queries
// it is the return value at Index.
type Output struct {
	Event string `json:"event,omitempty"`
	Field string `json:"field,omitempty"`
	Index int    `json:"index,omitempty"`
}

// DeploymentStep is one entry in a totally ordered deployment plan
type DeploymentStep struct {
	Name string   `json:"name"`
	Kind StepKind `json:"kind"`

	// Contract is the artifact whose ABI encodes the step (and whose
	// bytecode is deployed for deploy steps)
	Contract string `json:"contract"`

	// Target references the contract a call or query is sent to
	Target string `json:"target,omitempty"`

	// Method is a solidity signature such as "transferOwnership(address)"
	Method string `json:"method,omitempty"`

	Args      []Arg     `json:"args,omitempty"`
	Overrides Overrides `json:"overrides,omitempty"`

	// Existing makes the step conditional: when set the step is skipped and
	// its name resolves to this address instead
	Existing *common.Address `json:"existing,omitempty"`

	// Roles are additional names the step's address is published under
	Roles []string `json:"roles,omitempty"`

	Output *Output `json:"output,omitempty"`

	// Creates names the contract recorded in the ledger when a call creates one
	Creates string `json:"creates,omitempty"`
}

// Skipped reports whether the step resolves to a pre-configured address
func (s DeploymentStep) Skipped() bool {
	return s.Existing != nil
}

// Produces reports whether the step binds an address under its name
func (s DeploymentStep) Produces() bool {
	return s.Kind == StepDeploy || s.Output != nil || s.Skipped()
}

// Records reports whether a successful execution appends to the ledger
func (s DeploymentStep) Records() bool {
	if s.Skipped() {
		return false
	}
	return s.Kind == StepDeploy || (s.Kind == StepCall && s.Creates != "" && s.Output != nil)
}

// References returns every name the step depends on
func (s DeploymentStep) References() []string {
	var refs []string
	if s.Target != "" {
		refs = append(refs, s.Target)
	}
	for _, a := range s.Args {
		refs = append(refs, a.Refs()...)
	}
	return refs
}

// RecordedContract returns the contract name written to the ledger
func (s DeploymentStep) RecordedContract() string {
	if s.Creates != "" {
		return s.Creates
	}
	return s.Contract
}

// DeploymentPlan is an ordered list of steps for one run kind
type DeploymentPlan struct {
	Kind    RunKind          `json:"kind"`
	Network string           `json:"network"`
	Steps   []DeploymentStep `json:"steps"`
}

// RunKind names a family of plans. Each kind persists to its own ledger file.
type RunKind string

const (
	RunFull           RunKind = "full"
	RunMiniChef       RunKind = "minichef"
	RunNoToken        RunKind = "no-token"
	RunStakingRewards RunKind = "staking-rewards"
	RunVoteCalculator RunKind = "vote-calculator"
	RunFarms          RunKind = "farms"
)

// AllRunKinds lists every supported plan family
var AllRunKinds = []RunKind{RunFull, RunMiniChef, RunNoToken, RunStakingRewards, RunVoteCalculator, RunFarms}

// LedgerSuffix returns the suffix appended to the network name for the ledger file
func (k RunKind) LedgerSuffix() string {
	if k == RunFull {
		return ""
	}
	return "-" + string(k)
}
