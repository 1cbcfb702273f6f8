package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/google/uuid"
)

// AddressLedger is the append-only record of contracts deployed by one run.
// It is owned by the executor and threaded through each step.
type AddressLedger struct {
	network  string
	chainID  uint64
	run      models.RunKind
	runID    string
	deployer common.Address
	records  []models.DeploymentRecord
	index    map[string]int
}

// NewAddressLedger creates an empty ledger for one run
func NewAddressLedger(network string, chainID uint64, run models.RunKind, deployer common.Address) *AddressLedger {
	return &AddressLedger{
		network:  network,
		chainID:  chainID,
		run:      run,
		runID:    uuid.NewString(),
		deployer: deployer,
		index:    make(map[string]int),
	}
}

// Append adds a record. A step may only be recorded once.
func (l *AddressLedger) Append(record models.DeploymentRecord) error {
	if _, exists := l.index[record.Step]; exists {
		return fmt.Errorf("step %q is already recorded in the ledger", record.Step)
	}
	if record.ConstructorArgs == nil {
		record.ConstructorArgs = []any{}
	}
	l.index[record.Step] = len(l.records)
	l.records = append(l.records, record)
	return nil
}

// Records returns a copy of the records in insertion order
func (l *AddressLedger) Records() []models.DeploymentRecord {
	out := make([]models.DeploymentRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records
func (l *AddressLedger) Len() int {
	return len(l.records)
}

// Lookup returns the record for a step
func (l *AddressLedger) Lookup(step string) (models.DeploymentRecord, bool) {
	i, ok := l.index[step]
	if !ok {
		return models.DeploymentRecord{}, false
	}
	return l.records[i], true
}

// Snapshot returns the persisted form of the ledger
func (l *AddressLedger) Snapshot() *models.LedgerFile {
	return &models.LedgerFile{
		Network:  l.network,
		ChainID:  l.chainID,
		Run:      l.run,
		RunID:    l.runID,
		Deployer: l.deployer,
		Records:  l.Records(),
	}
}

// Persist writes the whole ledger to destination, replacing whatever is there.
func (l *AddressLedger) Persist(ctx context.Context, store LedgerStore, destination string) error {
	if err := store.Save(ctx, destination, l.Snapshot()); err != nil {
		return &domain.LedgerPersistenceErr{Destination: destination, Err: err}
	}
	return nil
}
