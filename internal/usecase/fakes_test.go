package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/stretchr/testify/mock"
)

var deployer = common.HexToAddress("0xde01")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastConfirmation() config.ConfirmationConfig {
	return config.ConfirmationConfig{
		Timeout:        50 * time.Millisecond,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

// fakeChain is an in-memory node. Every sent transaction bumps the
// account's count unless the test freezes or skews it.
type fakeChain struct {
	account common.Address
	count   uint64

	// failContract makes Deploy and Call fail for that contract
	failContract string
	// freezeAfter stops counting after that many transactions, zero disables
	freezeAfter int
	// skewAfter adds an extra count after that many transactions, zero disables
	skewAfter int
	countErr  error

	// queries is keyed by "<target> <method>" or just the method
	queries map[string][]any
	sent    []usecase.TxRequest
	nextID  uint16
	closed  int
}

func newFakeChain(startCount uint64) *fakeChain {
	return &fakeChain{account: deployer, count: startCount, queries: make(map[string][]any)}
}

func (c *fakeChain) Account() common.Address { return c.account }

func (c *fakeChain) Close() { c.closed++ }

func (c *fakeChain) ChainID(context.Context) (uint64, error) { return 1337, nil }

func (c *fakeChain) send(req usecase.TxRequest) (*usecase.TxOutcome, error) {
	if req.Contract == c.failContract {
		return nil, fmt.Errorf("execution reverted")
	}
	if req.Nonce != c.count {
		return nil, fmt.Errorf("nonce too low: have %d, want %d", req.Nonce, c.count)
	}
	c.sent = append(c.sent, req)
	c.nextID++
	if c.freezeAfter == 0 || len(c.sent) <= c.freezeAfter {
		c.count++
	}
	if c.skewAfter != 0 && len(c.sent) == c.skewAfter {
		c.count++
	}
	return &usecase.TxOutcome{
		Address:     common.BigToAddress(big.NewInt(0xc000 + int64(c.nextID))),
		TxHash:      common.BigToHash(big.NewInt(int64(c.nextID))),
		BlockNumber: uint64(c.nextID),
		GasUsed:     21000,
	}, nil
}

func (c *fakeChain) Deploy(_ context.Context, req usecase.TxRequest) (*usecase.TxOutcome, error) {
	return c.send(req)
}

func (c *fakeChain) Call(_ context.Context, req usecase.TxRequest) (*usecase.TxOutcome, error) {
	out, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if req.Event == "" {
		out.Address = common.Address{}
	}
	return out, nil
}

func (c *fakeChain) Query(_ context.Context, req usecase.QueryRequest) ([]any, error) {
	if values, ok := c.queries[req.Target.Hex()+" "+req.Method]; ok {
		return values, nil
	}
	if values, ok := c.queries[req.Method]; ok {
		return values, nil
	}
	return []any{common.HexToAddress("0xeeee")}, nil
}

func (c *fakeChain) EncodeCall(contract, method string, args []any) ([]byte, error) {
	return []byte(contract + "." + method), nil
}

func (c *fakeChain) TransactionCount(context.Context, common.Address) (uint64, error) {
	if c.countErr != nil {
		return 0, c.countErr
	}
	return c.count, nil
}

func (c *fakeChain) Balance(context.Context, common.Address) (*big.Int, error) {
	spent := new(big.Int).Mul(big.NewInt(int64(len(c.sent))), big.NewInt(1_000_000))
	return new(big.Int).Sub(config.WeiAmount(10), spent), nil
}

// sentTransactions counts the transactions a plan will send
func sentTransactions(plan *models.DeploymentPlan) int {
	n := 0
	for _, s := range plan.Steps {
		if !s.Skipped() && s.Kind.SendsTransaction() {
			n++
		}
	}
	return n
}

func recordedSteps(plan *models.DeploymentPlan) []string {
	var names []string
	for _, s := range plan.Steps {
		if s.Records() {
			names = append(names, s.Name)
		}
	}
	return names
}

type fakeClients struct {
	client usecase.ChainClient
	err    error
	calls  int
}

func (f *fakeClients) Connect(context.Context, *config.Network) (usecase.ChainClient, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

// MockLedgerStore is a mock implementation of LedgerStore
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) Save(ctx context.Context, destination string, ledger *models.LedgerFile) error {
	args := m.Called(ctx, destination, ledger)
	return args.Error(0)
}

func (m *MockLedgerStore) Load(ctx context.Context, destination string) (*models.LedgerFile, error) {
	args := m.Called(ctx, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerFile), args.Error(1)
}

func (m *MockLedgerStore) Destination(network string, run models.RunKind) string {
	return "addresses/" + network + run.LedgerSuffix() + ".json"
}

// MockConfirmer is a mock implementation of Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// MockProgressSink collects progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) { m.infos = append(m.infos, message) }

func (m *MockProgressSink) Error(string) {}

func (m *MockProgressSink) stages() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Stage
	}
	return out
}

func addr(hex string) *common.Address {
	a := common.HexToAddress(hex)
	return &a
}

// testParameters is a complete parameter set for every plan kind
func testParameters() *config.NetworkParameters {
	return &config.NetworkParameters{
		Network:         "localhost",
		NativeTokenName: "ICY",
		Token: config.TokenParameters{
			Symbol:      "EVRS",
			Name:        "Everest",
			TotalSupply: 230_000_000,
			Airdrop:     11_500_000,
		},
		TimelockDelay: 3 * 24 * 60 * 60,
		Multisig: config.MultisigParameters{
			Owners:    []common.Address{common.HexToAddress("0xa1"), common.HexToAddress("0xa2")},
			Threshold: 1,
		},
		FoundationMultisig: config.MultisigParameters{
			Owners:    []common.Address{common.HexToAddress("0xb1")},
			Threshold: 1,
		},
		GnosisSafe: config.GnosisSafeParameters{
			Singleton:       common.HexToAddress("0x5a01"),
			ProxyFactory:    common.HexToAddress("0x5a02"),
			FallbackHandler: common.HexToAddress("0x5a03"),
		},
		EVRSStakingWeight:  1000,
		WethEVRSFarmWeight: 3000,
		InitialFarms: []models.FarmSpec{
			{TokenA: "evrs", TokenB: "0x00000000000000000000000000000000000000f1", Weight: 500},
		},
		Farms: []models.FarmSpec{
			{TokenA: "nativeToken", TokenB: "0x00000000000000000000000000000000000000f2", Weight: 100},
		},
		VesterAllocations: []models.AllocationEntry{
			{Recipient: "treasury", Weight: 1105},
			{Recipient: "multisig", Weight: 1000},
			{Recipient: "chef", Weight: 7895, Special: true},
		},
		RevenueDistribution: []models.AllocationEntry{
			{Recipient: "multisig", Weight: 8000},
			{Recipient: "foundation", Weight: 2000},
		},
		Existing: config.ExistingContracts{
			EVRS:     addr("0xe1"),
			MiniChef: addr("0xe2"),
			Factory:  addr("0xe3"),
		},
	}
}
