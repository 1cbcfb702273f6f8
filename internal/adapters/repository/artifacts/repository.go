package artifacts

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// Interface ABIs for contracts the plans call but never deploy
//
//go:embed abis/*.json
var builtinABIs embed.FS

// Repository indexes compiled artifacts under the project's artifacts directory.
// Both Hardhat ({contractName, abi, bytecode}) and Foundry
// ({abi, bytecode: {object}}) layouts are understood.
type Repository struct {
	root      string
	artifacts map[string]*models.Artifact
	log       *slog.Logger
	mu        sync.RWMutex
	indexed   bool
}

// NewRepository creates a new artifact repository rooted at dir
func NewRepository(dir string, log *slog.Logger) *Repository {
	return &Repository{
		root:      dir,
		artifacts: make(map[string]*models.Artifact),
		log:       log,
	}
}

// NewRepositoryFromConfig reads artifacts from the project's artifacts path
func NewRepositoryFromConfig(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	dir := config.DefaultPaths().Artifacts
	if cfg.Project != nil && cfg.Project.Paths.Artifacts != "" {
		dir = cfg.Project.Paths.Artifacts
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return NewRepository(dir, log)
}

// Index discovers all artifacts once
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}
	r.artifacts = make(map[string]*models.Artifact)

	if err := r.indexBuiltins(); err != nil {
		return err
	}

	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		r.log.Warn("artifacts directory not found", "path", r.root)
		r.indexed = true
		return nil
	}

	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		artifact, err := Parse(data, strings.TrimSuffix(filepath.Base(path), ".json"))
		if err != nil {
			r.log.Debug("skipping artifact", "path", path, "error", err)
			return nil
		}
		artifact.Path, _ = filepath.Rel(r.root, path)

		if existing, ok := r.artifacts[artifact.Name]; ok && len(existing.Bytecode) > 0 {
			r.log.Warn("duplicate artifact name, keeping the first", "name", artifact.Name, "path", path)
			return nil
		}
		r.artifacts[artifact.Name] = artifact
		return nil
	})

	r.indexed = true
	return err
}

func (r *Repository) indexBuiltins() error {
	entries, err := builtinABIs.ReadDir("abis")
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := builtinABIs.ReadFile("abis/" + e.Name())
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		parsed, err := abi.JSON(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("builtin ABI %s: %w", name, err)
		}
		r.artifacts[name] = &models.Artifact{Name: name, Path: "builtin", ABI: parsed}
	}
	return nil
}

// GetArtifact returns the artifact for a contract name
func (r *Repository) GetArtifact(ctx context.Context, name string) (*models.Artifact, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if artifact, ok := r.artifacts[name]; ok {
		return artifact, nil
	}
	return nil, fmt.Errorf("%w: %s (searched %s)", domain.ErrArtifactNotFound, name, r.root)
}

// ListArtifacts returns every known contract name, sorted
func (r *Repository) ListArtifacts(ctx context.Context) ([]string, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.artifacts))
	for name := range r.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type artifactFile struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// Parse decodes a Hardhat or Foundry artifact. fallbackName is used when
// the file does not carry a contract name.
func Parse(data []byte, fallbackName string) (*models.Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(file.ABI) == 0 {
		return nil, fmt.Errorf("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(file.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}

	code, err := bytecode(file.Bytecode)
	if err != nil {
		return nil, err
	}

	name := file.ContractName
	if name == "" {
		name = fallbackName
	}
	return &models.Artifact{Name: name, ABI: parsed, Bytecode: code}, nil
}

func bytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		var foundry struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &foundry); err != nil {
			return nil, fmt.Errorf("unrecognised bytecode field")
		}
		hex = foundry.Object
	}
	if hex == "" || hex == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(hex, "0x") {
		hex = "0x" + hex
	}
	code, err := hexutil.Decode(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	return code, nil
}

var _ usecase.ArtifactRepository = (*Repository)(nil)
