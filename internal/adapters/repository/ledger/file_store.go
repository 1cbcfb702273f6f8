package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// FileStore writes one JSON ledger per network and run kind
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at the addresses directory
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// NewFileStoreFromConfig places ledgers under the project's addresses path
func NewFileStoreFromConfig(cfg *config.RuntimeConfig) *FileStore {
	paths := config.DefaultPaths()
	if cfg.Project != nil && cfg.Project.Paths.Addresses != "" {
		paths.Addresses = cfg.Project.Paths.Addresses
	}
	dir := paths.Addresses
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return NewFileStore(dir)
}

// Destination returns <dir>/<network><suffix>.json
func (s *FileStore) Destination(network string, run models.RunKind) string {
	return filepath.Join(s.dir, network+run.LedgerSuffix()+".json")
}

// Save writes the ledger through a temp file and a rename, so readers never
// observe a half-written file
func (s *FileStore) Save(ctx context.Context, destination string, ledger *models.LedgerFile) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(destination), err)
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	data = append(data, '\n')

	tmpPath := destination + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, destination); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Load reads a ledger written by Save
func (s *FileStore) Load(ctx context.Context, destination string) (*models.LedgerFile, error) {
	data, err := os.ReadFile(destination)
	if err != nil {
		return nil, err
	}

	var ledger models.LedgerFile
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", destination, err)
	}
	if ledger.Records == nil {
		ledger.Records = []models.DeploymentRecord{}
	}
	return &ledger, nil
}

var _ usecase.LedgerStore = (*FileStore)(nil)
