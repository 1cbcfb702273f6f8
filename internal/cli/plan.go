package cli

import (
	"fmt"
	"strings"

	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <plan>",
		Short: "Show the steps a deployment plan would execute",
		Long: fmt.Sprintf(`Build a deployment plan from the network parameters and print it without
connecting to the node. Steps backed by an address in the parameters'
existing section are shown as Existing and will not be sent.

Plans: %s`, strings.Join(runKindNames(), ", ")),
		Args:        cobra.ExactArgs(1),
		ValidArgs:   runKindNames(),
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseRunKind(args[0])
			if err != nil {
				return err
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// A dry run stops right after the plan is built and announced
			result, err := app.RunDeployment.Run(cmd.Context(), usecase.RunDeploymentParams{Kind: kind, DryRun: true})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewDeployRenderer(cmd.OutOrStdout()).RenderJSON(result.Plan)
			}
			return nil
		},
	}
}
