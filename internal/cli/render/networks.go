package render

import (
	"fmt"
	"io"

	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList prints every configured network. Probed networks show
// the chain id the node reported.
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in everest.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	for _, network := range result.Networks {
		switch {
		case network.Error != nil:
			fmt.Fprintf(r.out, "  ❌ %s - Error: %v\n", network.Name, network.Error)
		case network.Mismatch():
			fmt.Fprintf(r.out, "  ⚠️  %s - Chain ID: %d (node reports %d)\n", network.Name, network.ConfiguredChainID, network.ChainID)
		default:
			fmt.Fprintf(r.out, "  ✅ %s - Chain ID: %d\n", network.Name, network.ConfiguredChainID)
		}
	}

	return nil
}

func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	return r.RenderNetworksList(result)
}
