package app

import (
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	RunDeployment *usecase.RunDeployment
	Migrate       *usecase.Migrate
	ListNetworks  *usecase.ListNetworks
	ShowLedger    *usecase.ShowLedger

	// Adapters the CLI talks to directly
	Networks usecase.NetworkResolver
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	runDeployment *usecase.RunDeployment,
	migrate *usecase.Migrate,
	listNetworks *usecase.ListNetworks,
	showLedger *usecase.ShowLedger,
	networks usecase.NetworkResolver,
) (*App, error) {
	return &App{
		Config:        cfg,
		RunDeployment: runDeployment,
		Migrate:       migrate,
		ListNetworks:  listNetworks,
		ShowLedger:    showLedger,
		Networks:      networks,
	}, nil
}
