package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/migration"
)

// ContractERC20 is the generic token ABI used for approvals
const ContractERC20 = "ERC20"

// DefaultDeadlineWindow is how long a migration transaction stays valid
const DefaultDeadlineWindow = 20 * time.Minute

// Migrate drives a deployed bridge migration router
type Migrate struct {
	config    *config.RuntimeConfig
	clients   ChainClientFactory
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
	now       func() time.Time
}

// NewMigrate creates a new Migrate use case
func NewMigrate(
	cfg *config.RuntimeConfig,
	clients ChainClientFactory,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *Migrate {
	return &Migrate{
		config:    cfg,
		clients:   clients,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
		now:       time.Now,
	}
}

// AddMigratorParams registers migrator as the bridge token for Token
type AddMigratorParams struct {
	Router   common.Address
	Token    common.Address
	Migrator common.Address
	Yes      bool
}

// MigrateTokenParams swaps Amount of a legacy token for Recipient
type MigrateTokenParams struct {
	Router    common.Address
	Token     common.Address
	Recipient common.Address
	Amount    *big.Int
	Deadline  time.Duration
	Yes       bool
}

// MigrateLiquidityParams moves Liquidity from Source to Destination
type MigrateLiquidityParams struct {
	Router      common.Address
	Source      common.Address
	Destination common.Address
	Recipient   common.Address
	Liquidity   *big.Int
	Deadline    time.Duration
	Yes         bool
}

// ChargeBackParams previews a liquidity migration
type ChargeBackParams struct {
	Router      common.Address
	Source      common.Address
	Destination common.Address
	Liquidity   *big.Int
}

// ChargeBackResult holds the router's quote next to the local recomputation
type ChargeBackResult struct {
	Mapping models.MigrationPairMapping
	OnChain models.ChargeBack
	Local   *migration.MigrationQuote
	// Matches is false when the local model disagrees with the router
	Matches bool
}

// MigrateResult describes the transactions a migration command sent
type MigrateResult struct {
	Transactions []*TxOutcome
	ChargeBack   *ChargeBackResult
	Cancelled    bool
}

// migrationSession is one connected client plus its nonce guard
type migrationSession struct {
	client ChainClient
	guard  *NonceGuard
}

// AddMigrator registers a migrator. Only router admins may do this.
func (uc *Migrate) AddMigrator(ctx context.Context, params AddMigratorParams) (*MigrateResult, error) {
	s, result, err := uc.open(ctx, params.Yes, fmt.Sprintf("Register migrator %s for %s", params.Migrator.Hex(), params.Token.Hex()))
	if err != nil || result.Cancelled {
		return result, err
	}
	defer s.client.Close()

	admin, err := uc.isAdmin(ctx, s.client, params.Router)
	if err != nil {
		return result, err
	}
	if !admin {
		return result, fmt.Errorf("%w: %s is not an admin of router %s", domain.ErrUnauthorized, s.client.Account().Hex(), params.Router.Hex())
	}

	tx, err := uc.send(ctx, s, TxRequest{
		Contract: ContractMigrationRouter,
		Target:   params.Router,
		Method:   "addMigrator(address,address)",
		Args:     []any{params.Token, params.Migrator},
	})
	if err != nil {
		return result, err
	}
	result.Transactions = append(result.Transactions, tx)
	return result, nil
}

// MigrateToken approves the router and swaps a legacy token 1:1
func (uc *Migrate) MigrateToken(ctx context.Context, params MigrateTokenParams) (*MigrateResult, error) {
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	s, result, err := uc.open(ctx, params.Yes, fmt.Sprintf("Migrate %s of token %s", params.Amount, params.Token.Hex()))
	if err != nil || result.Cancelled {
		return result, err
	}
	defer s.client.Close()

	migrator, err := uc.bridgeMigrator(ctx, s.client, params.Router, params.Token)
	if err != nil {
		return result, err
	}
	if migrator == (common.Address{}) {
		return result, fmt.Errorf("%w: %s", domain.ErrNoMigratorConfigured, params.Token.Hex())
	}

	recipient := uc.recipient(s.client, params.Recipient)
	txs := []TxRequest{
		{
			Contract: ContractERC20,
			Target:   params.Token,
			Method:   "approve(address,uint256)",
			Args:     []any{params.Router, params.Amount},
		},
		{
			Contract: ContractMigrationRouter,
			Target:   params.Router,
			Method:   "migrateToken(address,address,uint256,uint256)",
			Args:     []any{params.Token, recipient, params.Amount, uc.deadline(params.Deadline)},
		},
	}
	for _, req := range txs {
		tx, err := uc.send(ctx, s, req)
		if err != nil {
			return result, err
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// MigrateLiquidity quotes the chargeback, then approves and migrates
func (uc *Migrate) MigrateLiquidity(ctx context.Context, params MigrateLiquidityParams) (*MigrateResult, error) {
	if params.Liquidity == nil || params.Liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("liquidity must be positive")
	}
	s, result, err := uc.open(ctx, params.Yes, fmt.Sprintf("Migrate %s liquidity from %s to %s",
		params.Liquidity, params.Source.Hex(), params.Destination.Hex()))
	if err != nil || result.Cancelled {
		return result, err
	}
	defer s.client.Close()

	quote, err := uc.chargeBack(ctx, s.client, ChargeBackParams{
		Router:      params.Router,
		Source:      params.Source,
		Destination: params.Destination,
		Liquidity:   params.Liquidity,
	})
	if err != nil {
		return result, err
	}
	result.ChargeBack = quote

	recipient := uc.recipient(s.client, params.Recipient)
	txs := []TxRequest{
		{
			Contract: ContractPair,
			Target:   params.Source,
			Method:   "approve(address,uint256)",
			Args:     []any{params.Router, params.Liquidity},
		},
		{
			Contract: ContractMigrationRouter,
			Target:   params.Router,
			Method:   "migrateLiquidity(address,address,address,uint256,uint256)",
			Args:     []any{params.Source, params.Destination, recipient, params.Liquidity, uc.deadline(params.Deadline)},
		},
	}
	for _, req := range txs {
		tx, err := uc.send(ctx, s, req)
		if err != nil {
			return result, err
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// ChargeBack previews a liquidity migration without sending anything
func (uc *Migrate) ChargeBack(ctx context.Context, params ChargeBackParams) (*ChargeBackResult, error) {
	if params.Liquidity == nil || params.Liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("liquidity must be positive")
	}
	client, err := uc.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return uc.chargeBack(ctx, client, params)
}

func (uc *Migrate) chargeBack(ctx context.Context, client ChainClient, params ChargeBackParams) (*ChargeBackResult, error) {
	values, err := client.Query(ctx, QueryRequest{
		Contract: ContractMigrationRouter,
		Target:   params.Router,
		Method:   "calculateChargeBack(address,address,uint256)",
		Args:     []any{params.Source, params.Destination, params.Liquidity},
	})
	if err != nil {
		return nil, err
	}
	amount0, err := bigAt(values, 0)
	if err != nil {
		return nil, err
	}
	amount1, err := bigAt(values, 1)
	if err != nil {
		return nil, err
	}

	src, err := uc.poolState(ctx, client, params.Source)
	if err != nil {
		return nil, err
	}
	dst, err := uc.poolState(ctx, client, params.Destination)
	if err != nil {
		return nil, err
	}

	route := make(map[common.Address]common.Address)
	var migrator common.Address
	for _, token := range []common.Address{src.Token0, src.Token1} {
		m, err := uc.bridgeMigrator(ctx, client, params.Router, token)
		if err != nil {
			return nil, err
		}
		if m != (common.Address{}) {
			route[token] = m
			migrator = m
		}
	}

	result := &ChargeBackResult{
		Mapping: models.MigrationPairMapping{Source: params.Source, Destination: params.Destination, Migrator: migrator},
		OnChain: models.ChargeBack{Token0: dst.Token0, Token1: dst.Token1, Amount0: amount0, Amount1: amount1},
	}

	local, err := migration.QuoteMigration(src, dst, params.Liquidity, route)
	if err != nil {
		uc.log.Warn("local chargeback preview failed", slog.String("error", err.Error()))
		return result, nil
	}
	result.Local = local
	result.Matches = local.ChargeBack0.Cmp(amount0) == 0 && local.ChargeBack1.Cmp(amount1) == 0
	if !result.Matches {
		uc.log.Warn("router chargeback differs from local preview",
			slog.String("router0", amount0.String()),
			slog.String("router1", amount1.String()),
			slog.String("local0", local.ChargeBack0.String()),
			slog.String("local1", local.ChargeBack1.String()),
		)
	}
	return result, nil
}

// poolState reads a pair's tokens, reserves and LP supply
func (uc *Migrate) poolState(ctx context.Context, client ChainClient, pair common.Address) (migration.PoolState, error) {
	var state migration.PoolState
	read := func(method string) ([]any, error) {
		return client.Query(ctx, QueryRequest{Contract: ContractPair, Target: pair, Method: method})
	}

	for _, field := range []struct {
		method string
		dst    *common.Address
	}{{"token0()", &state.Token0}, {"token1()", &state.Token1}} {
		values, err := read(field.method)
		if err != nil {
			return state, err
		}
		addr, err := addressAt(values, 0)
		if err != nil {
			return state, fmt.Errorf("%s on %s: %w", field.method, pair.Hex(), err)
		}
		*field.dst = addr
	}

	reserves, err := read("getReserves()")
	if err != nil {
		return state, err
	}
	if state.Reserve0, err = bigAt(reserves, 0); err != nil {
		return state, err
	}
	if state.Reserve1, err = bigAt(reserves, 1); err != nil {
		return state, err
	}

	supply, err := read("totalSupply()")
	if err != nil {
		return state, err
	}
	state.TotalSupply, err = bigAt(supply, 0)
	return state, err
}

func (uc *Migrate) bridgeMigrator(ctx context.Context, client ChainClient, router, token common.Address) (common.Address, error) {
	values, err := client.Query(ctx, QueryRequest{
		Contract: ContractMigrationRouter,
		Target:   router,
		Method:   "bridgeMigrator(address)",
		Args:     []any{token},
	})
	if err != nil {
		return common.Address{}, err
	}
	return addressAt(values, 0)
}

func (uc *Migrate) isAdmin(ctx context.Context, client ChainClient, router common.Address) (bool, error) {
	values, err := client.Query(ctx, QueryRequest{
		Contract: ContractMigrationRouter,
		Target:   router,
		Method:   "isAdmin(address)",
		Args:     []any{client.Account()},
	})
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, fmt.Errorf("isAdmin returned nothing")
	}
	admin, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("isAdmin returned %T", values[0])
	}
	return admin, nil
}

func (uc *Migrate) connect(ctx context.Context) (ChainClient, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}
	client, err := uc.clients.Connect(ctx, uc.config.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uc.config.Network.Name, err)
	}
	return client, nil
}

// open connects, asks for confirmation and starts a nonce guard
func (uc *Migrate) open(ctx context.Context, yes bool, prompt string) (*migrationSession, *MigrateResult, error) {
	result := &MigrateResult{}
	client, err := uc.connect(ctx)
	if err != nil {
		return nil, result, err
	}

	if !yes && !uc.config.NonInteractive {
		ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("%s on %s from %s", prompt, uc.config.Network.Name, client.Account().Hex()))
		if err != nil {
			client.Close()
			return nil, result, err
		}
		if !ok {
			client.Close()
			result.Cancelled = true
			return nil, result, nil
		}
	}

	guard, err := NewNonceGuard(ctx, client, client.Account(), uc.config.Confirmation, uc.log)
	if err != nil {
		client.Close()
		return nil, result, err
	}
	return &migrationSession{client: client, guard: guard}, result, nil
}

// send issues one call with the guarded nonce and waits for confirmation
func (uc *Migrate) send(ctx context.Context, s *migrationSession, req TxRequest) (*TxOutcome, error) {
	req.Nonce = s.guard.Expected()
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageStepStarting, Message: req.Method, Spinner: true})

	tx, err := s.client.Call(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", req.Method, req.Target.Hex(), err)
	}
	uc.log.Info("sent",
		slog.String("method", req.Method),
		slog.String("target", req.Target.Hex()),
		slog.String("tx", tx.TxHash.Hex()),
	)

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageConfirming, Message: req.Method, Spinner: true})
	if err := s.guard.Confirm(ctx); err != nil {
		return tx, err
	}
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageStepDone, Message: req.Method, Metadata: tx})
	return tx, nil
}

func (uc *Migrate) recipient(client ChainClient, recipient common.Address) common.Address {
	if recipient == (common.Address{}) {
		return client.Account()
	}
	return recipient
}

func (uc *Migrate) deadline(window time.Duration) *big.Int {
	if window <= 0 {
		window = DefaultDeadlineWindow
	}
	return big.NewInt(uc.now().Add(window).Unix())
}

func bigAt(values []any, i int) (*big.Int, error) {
	if i >= len(values) {
		return nil, fmt.Errorf("expected at least %d return values, got %d", i+1, len(values))
	}
	switch v := values[i].(type) {
	case *big.Int:
		return v, nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint32:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("return value %d is %T, not an integer", i, values[i])
	}
}

func addressAt(values []any, i int) (common.Address, error) {
	if i >= len(values) {
		return common.Address{}, fmt.Errorf("expected at least %d return values, got %d", i+1, len(values))
	}
	addr, ok := values[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("return value %d is %T, not an address", i, values[i])
	}
	return addr, nil
}
