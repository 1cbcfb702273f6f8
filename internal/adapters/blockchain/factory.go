package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// ClientFactory dials the selected network and binds the deployer key
type ClientFactory struct {
	cfg       *config.RuntimeConfig
	artifacts usecase.ArtifactRepository
	log       *slog.Logger
}

// NewClientFactory creates a new chain client factory
func NewClientFactory(cfg *config.RuntimeConfig, artifacts usecase.ArtifactRepository, log *slog.Logger) *ClientFactory {
	return &ClientFactory{cfg: cfg, artifacts: artifacts, log: log}
}

// Connect dials network.RPCURL and checks the chain ID when one is configured
func (f *ClientFactory) Connect(ctx context.Context, network *config.Network) (usecase.ChainClient, error) {
	if f.cfg.Project == nil || f.cfg.Project.Deployer.PrivateKey == "" {
		return nil, fmt.Errorf("no deployer key configured, set [deployer] private_key in everest.toml")
	}
	key, err := ParsePrivateKey(f.cfg.Project.Deployer.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid deployer key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	networkChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && networkChainID.Uint64() != network.ChainID {
		client.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, networkChainID.Uint64())
	}

	f.log.Debug("connected",
		slog.String("network", network.Name),
		slog.Uint64("chain_id", networkChainID.Uint64()),
	)
	return NewClient(client, key, f.artifacts, f.log), nil
}

// ParsePrivateKey accepts a hex key with or without 0x
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
}

var _ usecase.ChainClientFactory = (*ClientFactory)(nil)
