package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// Backend is the node surface the client needs. Both *ethclient.Client and
// the simulated backend's client satisfy it.
type Backend interface {
	ethereum.ChainStateReader
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.TransactionReader
	ethereum.TransactionSender
	ethereum.ChainIDReader
}

// Client signs transactions locally with the deployer key and waits for
// each receipt. It never picks a nonce or retries on its own.
type Client struct {
	backend   Backend
	key       *ecdsa.PrivateKey
	account   common.Address
	artifacts usecase.ArtifactRepository
	log       *slog.Logger

	chainID *big.Int
}

// NewClient creates a chain client for the deployer key
func NewClient(backend Backend, key *ecdsa.PrivateKey, artifacts usecase.ArtifactRepository, log *slog.Logger) *Client {
	return &Client{
		backend:   backend,
		key:       key,
		account:   crypto.PubkeyToAddress(key.PublicKey),
		artifacts: artifacts,
		log:       log.With("component", "ChainClient"),
	}
}

// Close closes the backend when it owns a connection
func (c *Client) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *Client) Account() common.Address {
	return c.account
}

func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.chainIDBig(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *Client) chainIDBig(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	c.chainID = id
	return id, nil
}

// Deploy creates req.Contract with its constructor arguments
func (c *Client) Deploy(ctx context.Context, req usecase.TxRequest) (*usecase.TxOutcome, error) {
	artifact, err := c.artifacts.GetArtifact(ctx, req.Contract)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDeploymentFailed, err)
	}
	if len(artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: artifact %s has no bytecode", domain.ErrDeploymentFailed, req.Contract)
	}

	args, err := CoerceArgs(artifact.ABI.Constructor.Inputs, req.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: constructor of %s: %w", domain.ErrDeploymentFailed, req.Contract, err)
	}
	input, err := artifact.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode constructor of %s: %w", domain.ErrDeploymentFailed, req.Contract, err)
	}
	data := append(append([]byte{}, artifact.Bytecode...), input...)

	receipt, err := c.transact(ctx, nil, data, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDeploymentFailed, req.Contract, err)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: receipt for %s has no contract address", domain.ErrDeploymentFailed, req.Contract)
	}

	return outcome(receipt, receipt.ContractAddress), nil
}

// Call sends a state-changing method call. When req.Event is set the
// outcome address is read from that event's req.Field.
func (c *Client) Call(ctx context.Context, req usecase.TxRequest) (*usecase.TxOutcome, error) {
	parsed, method, err := c.method(ctx, req.Contract, req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCallFailed, err)
	}
	data, err := pack(method, req.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCallFailed, req.Method, err)
	}

	target := req.Target
	receipt, err := c.transact(ctx, &target, data, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", domain.ErrCallFailed, req.Method, target.Hex(), err)
	}

	var addr common.Address
	if req.Event != "" {
		if addr, err = EventAddress(parsed, receipt.Logs, req.Event, req.Field); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrCallFailed, req.Method, err)
		}
	}
	return outcome(receipt, addr), nil
}

// Query performs a read-only call against the latest block
func (c *Client) Query(ctx context.Context, req usecase.QueryRequest) ([]any, error) {
	_, method, err := c.method(ctx, req.Contract, req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCallFailed, err)
	}
	data, err := pack(method, req.Args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCallFailed, req.Method, err)
	}

	target := req.Target
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{From: c.account, To: &target, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %w", domain.ErrCallFailed, req.Method, target.Hex(), err)
	}
	values, err := method.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s result: %w", domain.ErrCallFailed, req.Method, err)
	}
	return values, nil
}

// EncodeCall returns selector plus encoded arguments for method on contract
func (c *Client) EncodeCall(contract, signature string, args []any) ([]byte, error) {
	_, method, err := c.method(context.Background(), contract, signature)
	if err != nil {
		return nil, err
	}
	return pack(method, args)
}

func (c *Client) TransactionCount(ctx context.Context, account common.Address) (uint64, error) {
	return c.backend.NonceAt(ctx, account, nil)
}

func (c *Client) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.backend.BalanceAt(ctx, account, nil)
}

// transact signs and sends one legacy transaction with the caller's nonce
// and blocks until it is mined
func (c *Client) transact(ctx context.Context, to *common.Address, data []byte, req usecase.TxRequest) (*types.Receipt, error) {
	chainID, err := c.chainIDBig(ctx)
	if err != nil {
		return nil, err
	}

	value := new(big.Int)
	if req.Overrides.Value != "" {
		if _, ok := value.SetString(req.Overrides.Value, 0); !ok {
			return nil, fmt.Errorf("invalid value override %q", req.Overrides.Value)
		}
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}

	gas := req.Overrides.GasLimit
	if gas == 0 {
		gas, err = c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  c.account,
			To:    to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return nil, fmt.Errorf("estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       to,
		Value:    value,
		Data:     data,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	c.log.Debug("transaction submitted",
		slog.String("tx_hash", signedTx.Hash().Hex()),
		slog.Uint64("nonce", req.Nonce),
		slog.Uint64("gas", gas),
	)

	receipt, err := bind.WaitMined(ctx, c.backend, signedTx)
	if err != nil {
		return nil, fmt.Errorf("wait for receipt of %s: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted (gas used %d of %d)", signedTx.Hash().Hex(), receipt.GasUsed, gas)
	}
	return receipt, nil
}

// method finds a method on the contract's ABI by solidity signature, or by
// bare name when it is not overloaded
func (c *Client) method(ctx context.Context, contract, signature string) (*abi.ABI, *abi.Method, error) {
	artifact, err := c.artifacts.GetArtifact(ctx, contract)
	if err != nil {
		return nil, nil, err
	}
	m, err := FindMethod(&artifact.ABI, signature)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", contract, err)
	}
	return &artifact.ABI, m, nil
}

var errMethodNotFound = errors.New("method not found")

// FindMethod resolves "name(type,...)" or an unambiguous bare name
func FindMethod(parsed *abi.ABI, signature string) (*abi.Method, error) {
	if !strings.Contains(signature, "(") {
		if m, ok := parsed.Methods[signature]; ok {
			return &m, nil
		}
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, signature)
	}
	for _, m := range parsed.Methods {
		if m.Sig == signature {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errMethodNotFound, signature)
}

func pack(method *abi.Method, args []any) ([]byte, error) {
	coerced, err := CoerceArgs(method.Inputs, args)
	if err != nil {
		return nil, err
	}
	input, err := method.Inputs.Pack(coerced...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	return append(append([]byte{}, method.ID...), input...), nil
}

func outcome(receipt *types.Receipt, addr common.Address) *usecase.TxOutcome {
	out := &usecase.TxOutcome{
		Address: addr,
		TxHash:  receipt.TxHash,
		GasUsed: receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return out
}

var _ usecase.ChainClient = (*Client)(nil)
