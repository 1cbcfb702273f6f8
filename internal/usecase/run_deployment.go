package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// Progress stages emitted by RunDeployment
const (
	StagePlanCreated  = "plan_created"
	StageStepStarting = "step_starting"
	StageStepSkipped  = "step_skipped"
	StageStepDone     = "step_completed"
	StageConfirming   = "nonce_confirming"
	StageRunCompleted = "run_completed"
)

// StepStatus is the outcome of one plan step
type StepStatus string

const (
	StepExecuted StepStatus = "executed"
	StepSkipped  StepStatus = "skipped"
	StepFailed   StepStatus = "failed"
)

// RunDeployment executes a deployment plan one step at a time
type RunDeployment struct {
	config    *config.RuntimeConfig
	clients   ChainClientFactory
	store     LedgerStore
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunDeployment creates a new RunDeployment use case
func NewRunDeployment(
	cfg *config.RuntimeConfig,
	clients ChainClientFactory,
	store LedgerStore,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *RunDeployment {
	return &RunDeployment{
		config:    cfg,
		clients:   clients,
		store:     store,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
	}
}

// RunDeploymentParams contains parameters for a deployment run
type RunDeploymentParams struct {
	Kind   models.RunKind
	DryRun bool
	Yes    bool // skip the broadcast confirmation
}

// StepOutcome is the result of one executed, skipped or failed step
type StepOutcome struct {
	Step    models.DeploymentStep
	Status  StepStatus
	Address common.Address
	Tx      *TxOutcome
	Error   error
}

// RunDeploymentResult is returned even when the run fails, so the operator
// can inspect what already landed
type RunDeploymentResult struct {
	Plan         *models.DeploymentPlan
	Steps        []*StepOutcome
	Ledger       *models.LedgerFile
	Destination  string
	LastStep     string
	FailedStep   string
	Nonce        models.NonceState
	StartBalance *big.Int
	EndBalance   *big.Int
	DryRun       bool
	Cancelled    bool
}

// DeployCost returns the balance spent by the run, or nil if unknown
func (r *RunDeploymentResult) DeployCost() *big.Int {
	if r.StartBalance == nil || r.EndBalance == nil {
		return nil
	}
	return new(big.Int).Sub(r.StartBalance, r.EndBalance)
}

// runState is everything one run threads through its steps
type runState struct {
	client ChainClient
	guard  *NonceGuard
	book   *AddressBook
	ledger *AddressLedger
}

// Run builds the plan for params.Kind and executes it
func (uc *RunDeployment) Run(ctx context.Context, params RunDeploymentParams) (*RunDeploymentResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	plan, err := BuildPlan(params.Kind, uc.config.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s plan: %w", params.Kind, err)
	}

	result := &RunDeploymentResult{
		Plan:        plan,
		Destination: uc.store.Destination(uc.config.Network.Name, params.Kind),
		DryRun:      params.DryRun || uc.config.DryRun,
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StagePlanCreated,
		Total:    len(plan.Steps),
		Metadata: plan,
	})

	if result.DryRun {
		return result, nil
	}

	client, err := uc.clients.Connect(ctx, uc.config.Network)
	if err != nil {
		return result, fmt.Errorf("failed to connect to %s: %w", uc.config.Network.Name, err)
	}
	defer client.Close()

	if !params.Yes && !uc.config.NonInteractive {
		ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Execute %d steps on %s from %s",
			len(plan.Steps), uc.config.Network.Name, client.Account().Hex()))
		if err != nil {
			return result, err
		}
		if !ok {
			result.Cancelled = true
			return result, domain.ErrCancelled
		}
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read chain ID: %w", err)
	}

	guard, err := NewNonceGuard(ctx, client, client.Account(), uc.config.Confirmation, uc.log)
	if err != nil {
		return result, err
	}

	state := &runState{
		client: client,
		guard:  guard,
		book:   NewAddressBook(),
		ledger: NewAddressLedger(uc.config.Network.Name, chainID, params.Kind, client.Account()),
	}
	if err := state.book.Bind(client.Account(), RoleDeployer); err != nil {
		return result, err
	}

	if balance, err := client.Balance(ctx, client.Account()); err != nil {
		uc.log.Warn("failed to read deployer balance", slog.String("error", err.Error()))
	} else {
		result.StartBalance = balance
	}

	uc.log.Info("starting deployment",
		slog.String("plan", string(params.Kind)),
		slog.String("network", uc.config.Network.Name),
		slog.String("deployer", client.Account().Hex()),
		slog.Uint64("nonce", guard.Expected()),
	)

	for i, step := range plan.Steps {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepStarting,
			Current:  i + 1,
			Total:    len(plan.Steps),
			Message:  step.Name,
			Spinner:  true,
			Metadata: step,
		})

		outcome, err := uc.executeStep(ctx, state, step)
		result.Steps = append(result.Steps, outcome)
		result.Nonce = guard.State()
		result.Ledger = state.ledger.Snapshot()

		if err != nil {
			outcome.Status = StepFailed
			outcome.Error = err
			result.FailedStep = step.Name
			uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageStepDone, Current: i + 1, Total: len(plan.Steps), Metadata: outcome})
			uc.persistPartial(ctx, state.ledger, result.Destination)
			return result, &domain.StepError{Step: step.Name, Kind: string(step.Kind), Err: err}
		}

		result.LastStep = step.Name
		stage := StageStepDone
		if outcome.Status == StepSkipped {
			stage = StageStepSkipped
		}
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: stage, Current: i + 1, Total: len(plan.Steps), Metadata: outcome})
	}

	if balance, err := client.Balance(ctx, client.Account()); err != nil {
		uc.log.Warn("failed to read deployer balance", slog.String("error", err.Error()))
	} else {
		result.EndBalance = balance
	}

	result.Ledger = state.ledger.Snapshot()
	if err := state.ledger.Persist(ctx, uc.store, result.Destination); err != nil {
		return result, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageRunCompleted, Metadata: result})
	return result, nil
}

func (uc *RunDeployment) executeStep(ctx context.Context, s *runState, step models.DeploymentStep) (*StepOutcome, error) {
	outcome := &StepOutcome{Step: step}

	if step.Skipped() {
		outcome.Status = StepSkipped
		outcome.Address = *step.Existing
		uc.log.Info("using configured address",
			slog.String("step", step.Name),
			slog.String("address", step.Existing.Hex()),
		)
		return outcome, s.book.Bind(*step.Existing, step.Name, step.Roles...)
	}

	args, err := ResolveArgs(step.Args, s.book, s.client)
	if err != nil {
		return outcome, err
	}

	var target common.Address
	if step.Kind != models.StepDeploy {
		if target, err = s.book.Resolve(step.Target); err != nil {
			return outcome, err
		}
	}

	if step.Kind == models.StepQuery {
		return outcome, uc.executeQuery(ctx, s, step, target, args, outcome)
	}

	req := TxRequest{
		Contract:  step.Contract,
		Target:    target,
		Method:    step.Method,
		Args:      args,
		Overrides: step.Overrides,
		Nonce:     s.guard.Expected(),
	}
	if step.Output != nil {
		req.Event = step.Output.Event
		req.Field = step.Output.Field
	}

	var tx *TxOutcome
	if step.Kind == models.StepDeploy {
		tx, err = s.client.Deploy(ctx, req)
		if err != nil && !errors.Is(err, domain.ErrDeploymentFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrDeploymentFailed, err)
		}
	} else {
		tx, err = s.client.Call(ctx, req)
		if err != nil && !errors.Is(err, domain.ErrCallFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrCallFailed, err)
		}
	}
	if err != nil {
		return outcome, err
	}
	outcome.Status = StepExecuted
	outcome.Tx = tx
	outcome.Address = tx.Address

	// The transaction has landed, so record it before waiting on the nonce
	if step.Records() {
		record := models.DeploymentRecord{
			Step:            step.Name,
			Contract:        step.RecordedContract(),
			Address:         tx.Address,
			ConstructorArgs: RenderArgs(args),
			TxHash:          tx.TxHash,
			BlockNumber:     tx.BlockNumber,
			GasUsed:         tx.GasUsed,
		}
		if err := s.ledger.Append(record); err != nil {
			return outcome, err
		}
		uc.log.Info("deployed",
			slog.String("step", step.Name),
			slog.String("contract", record.Contract),
			slog.String("address", record.Address.Hex()),
		)
	}
	if step.Produces() {
		if err := s.book.Bind(tx.Address, step.Name, step.Roles...); err != nil {
			return outcome, err
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageConfirming, Message: step.Name, Spinner: true})
	return outcome, s.guard.Confirm(ctx)
}

func (uc *RunDeployment) executeQuery(ctx context.Context, s *runState, step models.DeploymentStep, target common.Address, args []any, outcome *StepOutcome) error {
	values, err := s.client.Query(ctx, QueryRequest{
		Contract: step.Contract,
		Target:   target,
		Method:   step.Method,
		Args:     args,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrCallFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrCallFailed, err)
		}
		return err
	}
	outcome.Status = StepExecuted

	if step.Output == nil {
		uc.log.Info("queried", slog.String("step", step.Name), slog.Int("values", len(values)))
		return nil
	}
	if step.Output.Index >= len(values) {
		return fmt.Errorf("%w: %s returned %d values, wanted index %d", domain.ErrCallFailed, step.Method, len(values), step.Output.Index)
	}
	addr, ok := values[step.Output.Index].(common.Address)
	if !ok {
		return fmt.Errorf("%w: %s returned %T, not an address", domain.ErrCallFailed, step.Method, values[step.Output.Index])
	}
	outcome.Address = addr
	return s.book.Bind(addr, step.Name, step.Roles...)
}

// persistPartial writes what has landed so far next to the final ledger
func (uc *RunDeployment) persistPartial(ctx context.Context, ledger *AddressLedger, destination string) {
	if ledger.Len() == 0 {
		return
	}
	partial := PartialDestination(destination)
	if err := ledger.Persist(ctx, uc.store, partial); err != nil {
		uc.log.Warn("failed to write partial ledger", slog.String("path", partial), slog.String("error", err.Error()))
		return
	}
	uc.progress.Info(fmt.Sprintf("Partial ledger written to %s", partial))
}

// PartialDestination returns where an aborted run's ledger is written
func PartialDestination(destination string) string {
	return strings.TrimSuffix(destination, ".json") + ".partial.json"
}
