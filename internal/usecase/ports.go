package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// TxRequest describes a transaction the chain client should sign and send.
// Args are already resolved to plain values (addresses, big ints, bools,
// strings, byte slices and nested slices for arrays and tuples).
type TxRequest struct {
	Contract  string
	Target    common.Address // zero for contract creation
	Method    string         // solidity signature, empty for contract creation
	Args      []any
	Overrides models.Overrides
	Nonce     uint64
	// Event and Field select an address emitted by the transaction
	Event string
	Field string
}

// QueryRequest describes a read-only call
type QueryRequest struct {
	Contract string
	Target   common.Address
	Method   string
	Args     []any
}

// TxOutcome is what a mined transaction produced
type TxOutcome struct {
	Address     common.Address // created contract or selected event field
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
}

// ChainClient wraps the blockchain node. Every state-changing operation
// returns only once the transaction is mined, and never retries.
type ChainClient interface {
	Account() common.Address
	ChainID(ctx context.Context) (uint64, error)
	Deploy(ctx context.Context, req TxRequest) (*TxOutcome, error)
	Call(ctx context.Context, req TxRequest) (*TxOutcome, error)
	Query(ctx context.Context, req QueryRequest) ([]any, error)
	EncodeCall(contract, method string, args []any) ([]byte, error)
	TransactionCount(ctx context.Context, account common.Address) (uint64, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	// Close releases the node connection
	Close()
}

// ChainClientFactory connects to the selected network
type ChainClientFactory interface {
	Connect(ctx context.Context, network *config.Network) (ChainClient, error)
}

// ArtifactRepository provides compiled contracts
type ArtifactRepository interface {
	GetArtifact(ctx context.Context, name string) (*models.Artifact, error)
	ListArtifacts(ctx context.Context) ([]string, error)
}

// LedgerStore persists address ledgers
type LedgerStore interface {
	Save(ctx context.Context, destination string, ledger *models.LedgerFile) error
	Load(ctx context.Context, destination string) (*models.LedgerFile, error)
	Destination(network string, run models.RunKind) string
}

// Confirmer asks the operator before broadcasting
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// NetworkResolver resolves configured networks
type NetworkResolver interface {
	GetNetworks(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, name string) (*config.Network, error)
	ProbeChainID(ctx context.Context, network *config.Network) (uint64, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
