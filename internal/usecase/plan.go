package usecase

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// RoleDeployer is bound to the deployer account before any step runs
const RoleDeployer = "deployer"

// ValidatePlan checks that step names are unique, that every step is well
// formed and that every reference points strictly backwards. prebound lists
// names available before the first step.
func ValidatePlan(plan *models.DeploymentPlan, prebound ...string) error {
	known := make(map[string]bool)
	for _, name := range prebound {
		known[name] = true
	}
	seen := make(map[string]bool)

	var problems []error
	for i, step := range plan.Steps {
		if step.Name == "" {
			problems = append(problems, fmt.Errorf("step %d has no name", i))
			continue
		}
		if seen[step.Name] {
			problems = append(problems, fmt.Errorf("duplicate step name %q", step.Name))
		}
		seen[step.Name] = true

		switch step.Kind {
		case models.StepDeploy:
			if step.Contract == "" && !step.Skipped() {
				problems = append(problems, fmt.Errorf("deploy step %q has no contract", step.Name))
			}
		case models.StepCall, models.StepQuery:
			if step.Target == "" || step.Method == "" || step.Contract == "" {
				problems = append(problems, fmt.Errorf("%s step %q needs a target, method and contract", step.Kind, step.Name))
			}
			if step.Kind == models.StepQuery && step.Output != nil && step.Output.Event != "" {
				problems = append(problems, fmt.Errorf("query step %q cannot read events", step.Name))
			}
		default:
			problems = append(problems, fmt.Errorf("step %q has unknown kind %q", step.Name, step.Kind))
		}

		// A skipped step never executes, so its arguments are not consumed
		if !step.Skipped() {
			for _, ref := range step.References() {
				if !known[ref] {
					problems = append(problems, domain.UnresolvedRecipientErr{Role: ref, Step: step.Name})
				}
			}
		}

		if step.Produces() {
			known[step.Name] = true
			for _, role := range step.Roles {
				known[role] = true
			}
		}
	}

	if len(problems) > 0 {
		return &domain.PlanValidationErr{Plan: string(plan.Kind), Problems: problems}
	}
	return nil
}

// CallEncoder encodes nested calldata arguments
type CallEncoder interface {
	EncodeCall(contract, method string, args []any) ([]byte, error)
}

// ResolveArgs turns plan arguments into plain values using the address book
func ResolveArgs(args []models.Arg, book *AddressBook, enc CallEncoder) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, err := resolveArg(a, book, enc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func resolveArg(a models.Arg, book *AddressBook, enc CallEncoder) (any, error) {
	switch a.Kind {
	case models.ArgLiteral:
		return a.Value, nil
	case models.ArgRef:
		return book.Resolve(a.Ref)
	case models.ArgList, models.ArgTuple:
		return ResolveArgs(a.Items, book, enc)
	case models.ArgCalldata:
		items, err := ResolveArgs(a.Items, book, enc)
		if err != nil {
			return nil, err
		}
		data, err := enc.EncodeCall(a.Contract, a.Method, items)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s.%s: %w", a.Contract, a.Method, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown argument kind %q", a.Kind)
	}
}

// RenderArgs converts resolved values into JSON-stable form for the ledger:
// addresses and integers become strings, bytes become 0x-hex.
func RenderArgs(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = renderValue(v)
	}
	return out
}

func renderValue(v any) any {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case *common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case []any:
		return RenderArgs(x)
	case bool, string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	default:
		return fmt.Sprint(x)
	}
}
