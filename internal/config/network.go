package config

import (
	"sort"

	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// NetworkResolver resolves network names against the [networks] tables of everest.toml
type NetworkResolver struct {
	networks map[string]config.NetworkEntry
}

// NewNetworkResolver creates a resolver for the project's networks
func NewNetworkResolver(project *config.ProjectConfig) *NetworkResolver {
	networks := map[string]config.NetworkEntry{}
	if project != nil && project.Networks != nil {
		networks = project.Networks
	}
	return &NetworkResolver{networks: networks}
}

// GetNetworks returns all configured network names, sorted
func (r *NetworkResolver) GetNetworks() []string {
	names := lo.Keys(r.networks)
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	entry, ok := r.networks[name]
	if !ok {
		return nil, domain.UnknownNetworkErr{Name: name, Suggestions: r.suggest(name)}
	}
	return &config.Network{
		Name:    name,
		RPCURL:  entry.RPCURL,
		ChainID: entry.ChainID,
	}, nil
}

// suggest returns up to three configured names that fuzzy-match name
func (r *NetworkResolver) suggest(name string) []string {
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, r.GetNetworks())
	suggestions := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}
