package adapters

import (
	"github.com/everest-dex/everest-deploy/internal/adapters/blockchain"
	internalconfig "github.com/everest-dex/everest-deploy/internal/adapters/config"
	"github.com/everest-dex/everest-deploy/internal/adapters/interactive"
	"github.com/everest-dex/everest-deploy/internal/adapters/repository/artifacts"
	"github.com/everest-dex/everest-deploy/internal/adapters/repository/ledger"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/google/wire"
)

// RepositorySet provides file-backed artifact and ledger storage
var RepositorySet = wire.NewSet(
	artifacts.NewRepositoryFromConfig,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.Repository)),

	ledger.NewFileStoreFromConfig,
	wire.Bind(new(usecase.LedgerStore), new(*ledger.FileStore)),
)

// BlockchainSet provides RPC-backed chain clients
var BlockchainSet = wire.NewSet(
	blockchain.NewClientFactory,
	wire.Bind(new(usecase.ChainClientFactory), new(*blockchain.ClientFactory)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmerAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.ConfirmerAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.NewNetworkResolverAdapter,
	wire.Bind(new(usecase.NetworkResolver), new(*internalconfig.NetworkResolverAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	RepositorySet,
	BlockchainSet,
	InteractiveSet,
	ConfigSet,
)
