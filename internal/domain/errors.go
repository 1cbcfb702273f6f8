package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrDeploymentFailed is returned when a contract creation reverts or never lands
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrCallFailed is returned when a state-changing or view call reverts or the node is unreachable
	ErrCallFailed = errors.New("call failed")

	// ErrNonceConfirmationTimeout is returned when the node never reports the expected transaction count
	ErrNonceConfirmationTimeout = errors.New("nonce confirmation timeout")

	// ErrNonceDrift is returned when the node reports more transactions than this run has sent
	ErrNonceDrift = errors.New("nonce drift detected")

	// ErrUnresolvedRecipient is returned when a symbolic role has no address bound yet
	ErrUnresolvedRecipient = errors.New("unresolved recipient")

	// ErrLedgerPersistenceFailed is returned when the address ledger could not be written
	ErrLedgerPersistenceFailed = errors.New("ledger persistence failed")

	// ErrInvalidPlan is returned when a deployment plan is malformed
	ErrInvalidPlan = errors.New("invalid deployment plan")

	// ErrArtifactNotFound is returned when no compiled artifact exists for a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrUnauthorized is returned when a non-admin invokes an admin-only router operation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIncompatibleMigrator is returned when a migrator does not wrap the legacy token it is registered for
	ErrIncompatibleMigrator = errors.New("incompatible migrator")

	// ErrNoMigratorConfigured is returned when a token has no registered migrator
	ErrNoMigratorConfigured = errors.New("no migrator configured")

	// ErrDeadlineExpired is returned when a migration is attempted after its deadline
	ErrDeadlineExpired = errors.New("deadline expired")

	// ErrNetworkNotFound is returned when a network name is not configured
	ErrNetworkNotFound = errors.New("network not found")

	// ErrCancelled is returned when the operator declines to broadcast
	ErrCancelled = errors.New("cancelled by operator")
)

// StepError reports which plan step halted a run.
type StepError struct {
	Step string
	Kind string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type UnresolvedRecipientErr struct {
	Role string
	Step string
}

func (e UnresolvedRecipientErr) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("recipient %q is not bound to any address", e.Role)
	}
	return fmt.Sprintf("step %q references %q before it is deployed or configured", e.Step, e.Role)
}

func (e UnresolvedRecipientErr) Is(target error) bool { return target == ErrUnresolvedRecipient }

type NonceConfirmationTimeoutErr struct {
	Account  common.Address
	Expected uint64
	Observed uint64
	Waited   time.Duration
}

func (e NonceConfirmationTimeoutErr) Error() string {
	return fmt.Sprintf("transaction count for %s stuck at %d after %s (waiting for %d)",
		e.Account.Hex(), e.Observed, e.Waited.Round(time.Millisecond), e.Expected)
}

func (e NonceConfirmationTimeoutErr) Is(target error) bool {
	return target == ErrNonceConfirmationTimeout
}

type NonceDriftErr struct {
	Account  common.Address
	Expected uint64
	Observed uint64
}

func (e NonceDriftErr) Error() string {
	return fmt.Sprintf("transaction count for %s jumped to %d, expected %d: another sender is using this account",
		e.Account.Hex(), e.Observed, e.Expected)
}

func (e NonceDriftErr) Is(target error) bool { return target == ErrNonceDrift }

// LedgerPersistenceErr carries the destination that failed. The records are
// all deployed, so callers must still surface them.
type LedgerPersistenceErr struct {
	Destination string
	Err         error
}

func (e *LedgerPersistenceErr) Error() string {
	return fmt.Sprintf("failed to persist ledger to %s: %v", e.Destination, e.Err)
}

func (e *LedgerPersistenceErr) Unwrap() error { return e.Err }

func (e *LedgerPersistenceErr) Is(target error) bool { return target == ErrLedgerPersistenceFailed }

// PlanValidationErr collects every problem found in a plan.
type PlanValidationErr struct {
	Plan     string
	Problems []error
}

func (e *PlanValidationErr) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = "  - " + p.Error()
	}
	return fmt.Sprintf("plan %q is invalid:\n%s", e.Plan, strings.Join(msgs, "\n"))
}

func (e *PlanValidationErr) Unwrap() []error { return append([]error{ErrInvalidPlan}, e.Problems...) }

type UnknownNetworkErr struct {
	Name        string
	Suggestions []string
}

func (e UnknownNetworkErr) Error() string {
	msg := fmt.Sprintf("network %q is not configured in everest.toml", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e UnknownNetworkErr) Is(target error) bool { return target == ErrNetworkNotFound }
