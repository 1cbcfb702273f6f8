package cli

import (
	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List networks from everest.toml",
		Long: `List all networks configured in the [networks] section of everest.toml.

With --probe each node is asked for its chain ID, and networks whose node
disagrees with the configured chain_id are flagged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: probe})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewDeployRenderer(cmd.OutOrStdout()).RenderJSON(lo.Map(result.Networks, toNetworkJSON))
			}
			return render.NewNetworksRenderer(cmd.OutOrStdout()).RenderNetworksList(result)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Query each node for its chain ID")

	return cmd
}

type networkJSON struct {
	Name              string `json:"name"`
	RPCURL            string `json:"rpcUrl,omitempty"`
	ConfiguredChainID uint64 `json:"chainId,omitempty"`
	NodeChainID       uint64 `json:"nodeChainId,omitempty"`
	Error             string `json:"error,omitempty"`
}

func toNetworkJSON(s usecase.NetworkStatus, _ int) networkJSON {
	out := networkJSON{
		Name:              s.Name,
		RPCURL:            s.RPCURL,
		ConfiguredChainID: s.ConfiguredChainID,
		NodeChainID:       s.ChainID,
	}
	if s.Error != nil {
		out.Error = s.Error.Error()
	}
	return out
}
