package cli

import (
	"fmt"
	"strings"

	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func runKindNames() []string {
	return lo.Map(models.AllRunKinds, func(k models.RunKind, _ int) string { return string(k) })
}

// parseRunKind validates a plan family name
func parseRunKind(arg string) (models.RunKind, error) {
	kind := models.RunKind(strings.ToLower(arg))
	if !lo.Contains(models.AllRunKinds, kind) {
		return "", fmt.Errorf("unknown plan %q, expected one of: %s", arg, strings.Join(runKindNames(), ", "))
	}
	return kind, nil
}

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <plan>",
		Short: "Execute a deployment plan against a network",
		Long: fmt.Sprintf(`Execute a deployment plan step by step.

Each transaction must be reflected in the deployer's transaction count before
the next step is sent. Deployed addresses are written to
addresses/<network>[-<plan>].json once every step has succeeded; if a step
fails, what already landed is written to a .partial.json file next to it.

Plans: %s

Examples:
  everest-deploy deploy full --network ice_arctic
  everest-deploy deploy minichef -n ice_snow --yes
  everest-deploy deploy farms -n localhost --dry-run`, strings.Join(runKindNames(), ", ")),
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

			result, runErr := app.RunDeployment.Run(cmd.Context(), usecase.RunDeploymentParams{
				Kind:   kind,
				DryRun: dryRun,
				Yes:    yes,
			})

			renderer := render.NewDeployRenderer(cmd.OutOrStdout())
			if app.Config.JSON {
				if result != nil {
					if err := renderer.RenderJSON(deployJSON(result, runErr)); err != nil {
						return err
					}
				}
				return runErr
			}
			if err := renderer.RenderResult(result, runErr); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without sending transactions")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// deployOutput is the --json shape of a deployment run
type deployOutput struct {
	Destination string                 `json:"destination,omitempty"`
	DryRun      bool                   `json:"dryRun,omitempty"`
	Cancelled   bool                   `json:"cancelled,omitempty"`
	LastStep    string                 `json:"lastStep,omitempty"`
	FailedStep  string                 `json:"failedStep,omitempty"`
	DeployCost  string                 `json:"deployCost,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Plan        *models.DeploymentPlan `json:"plan,omitempty"`
	Ledger      *models.LedgerFile     `json:"ledger,omitempty"`
}

func deployJSON(result *usecase.RunDeploymentResult, runErr error) deployOutput {
	out := deployOutput{
		Destination: result.Destination,
		DryRun:      result.DryRun,
		Cancelled:   result.Cancelled,
		LastStep:    result.LastStep,
		FailedStep:  result.FailedStep,
		Ledger:      result.Ledger,
	}
	if cost := result.DeployCost(); cost != nil {
		out.DeployCost = cost.String()
	}
	if result.DryRun {
		out.Plan = result.Plan
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	return out
}
