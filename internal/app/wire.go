//go:build wireinject
// +build wireinject

package app

import (
	"github.com/everest-dex/everest-deploy/internal/adapters"
	"github.com/everest-dex/everest-deploy/internal/config"
	"github.com/everest-dex/everest-deploy/internal/logging"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		config.Provider,
		config.ProvideNetworkResolver,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunDeployment,
		usecase.NewMigrate,
		usecase.NewListNetworks,
		usecase.NewShowLedger,

		// App
		NewApp,
	)
	return nil, nil
}
