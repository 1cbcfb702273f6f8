package cli

import (
	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewLedgerCmd creates the ledger command group
func NewLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect recorded deployments",
	}
	cmd.AddCommand(newLedgerShowCmd())
	return cmd
}

func newLedgerShowCmd() *cobra.Command {
	var (
		kind    string
		partial bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the address ledger for a network",
		Long: `Print the address ledger written by a deployment run.

Examples:
  everest-deploy ledger show -n ice_arctic
  everest-deploy ledger show -n ice_arctic --plan minichef
  everest-deploy ledger show -n ice_arctic --partial --json`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ShowLedgerParams{Partial: partial}
			if kind != "" {
				if params.Kind, err = parseRunKind(kind); err != nil {
					return err
				}
			}

			result, err := app.ShowLedger.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			renderer := render.NewDeployRenderer(cmd.OutOrStdout())
			if app.Config.JSON {
				return renderer.RenderJSON(result.Ledger)
			}
			return renderer.RenderLedger(result.Destination, result.Ledger)
		},
	}

	cmd.Flags().StringVar(&kind, "plan", "", "Plan whose ledger to show (default full)")
	cmd.Flags().BoolVar(&partial, "partial", false, "Show the ledger left by a failed run")

	return cmd
}
