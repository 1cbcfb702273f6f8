package usecase

import (
	"context"
	"fmt"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
)

// ShowLedgerParams selects which ledger file to read
type ShowLedgerParams struct {
	Kind    models.RunKind
	Partial bool // read the file an aborted run left behind
}

// ShowLedgerResult is a loaded ledger and where it came from
type ShowLedgerResult struct {
	Destination string
	Ledger      *models.LedgerFile
}

// ShowLedger reads a persisted address ledger for the selected network
type ShowLedger struct {
	config *config.RuntimeConfig
	store  LedgerStore
}

// NewShowLedger creates a new ShowLedger use case
func NewShowLedger(cfg *config.RuntimeConfig, store LedgerStore) *ShowLedger {
	return &ShowLedger{config: cfg, store: store}
}

// Run loads the ledger for params.Kind
func (uc *ShowLedger) Run(ctx context.Context, params ShowLedgerParams) (*ShowLedgerResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}
	kind := params.Kind
	if kind == "" {
		kind = models.RunFull
	}

	destination := uc.store.Destination(uc.config.Network.Name, kind)
	if params.Partial {
		destination = PartialDestination(destination)
	}

	ledger, err := uc.store.Load(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger %s: %w", destination, err)
	}
	return &ShowLedgerResult{Destination: destination, Ledger: ledger}, nil
}
