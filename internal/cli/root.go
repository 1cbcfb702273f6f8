package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/everest-dex/everest-deploy/internal/adapters/interactive"
	"github.com/everest-dex/everest-deploy/internal/adapters/progress"
	"github.com/everest-dex/everest-deploy/internal/app"
	"github.com/everest-dex/everest-deploy/internal/config"
	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// needsNetwork marks commands that cannot run without a selected network
	needsNetwork = "everest.network"
)

// Exit codes returned by the binary
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitLedgerPersistence = 2
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "everest-deploy",
		Short: "Deployment orchestrator for the Everest DEX contracts",
		Long: `everest-deploy executes ordered deployment plans for the Everest contract
suite, waits for every transaction to be reflected in the deployer's nonce
before the next one is sent, and records each deployed address in a
per-network ledger under addresses/.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot)
			bindGlobalFlags(v, cmd)

			if requiresNetwork(cmd) && v.GetString("network") == "" {
				if err := promptNetwork(v, projectRoot); err != nil {
					return err
				}
			}

			var sink usecase.ProgressSink
			if v.GetBool("json") {
				sink = progress.NewNopSink()
			} else {
				sink = progress.NewRunProgress(cmd.OutOrStdout())
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use, as named in everest.toml [networks]")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	planCmd := NewPlanCmd()
	planCmd.GroupID = "main"
	rootCmd.AddCommand(planCmd)

	migrateCmd := NewMigrateCmd()
	migrateCmd.GroupID = "main"
	rootCmd.AddCommand(migrateCmd)

	// Management commands
	ledgerCmd := NewLedgerCmd()
	ledgerCmd.GroupID = "management"
	rootCmd.AddCommand(ledgerCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags that exist and have been changed
	if f := cmd.Flag("debug"); f != nil && f.Changed {
		v.Set("debug", f.Value.String())
	}
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		v.Set("non_interactive", f.Value.String())
	}
	if f := cmd.Flag("json"); f != nil && f.Changed {
		v.Set("json", f.Value.String())
	}
	if f := cmd.Flag("network"); f != nil && f.Changed {
		v.Set("network", f.Value.String())
	}
	if f := cmd.Flag("dry-run"); f != nil && f.Changed {
		v.Set("dry_run", f.Value.String())
	}
}

// requiresNetwork reports whether cmd carries the needsNetwork annotation
func requiresNetwork(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[needsNetwork]
	return ok
}

// promptNetwork asks the operator to pick a network when none was given
func promptNetwork(v *viper.Viper, projectRoot string) error {
	if v.GetBool("non_interactive") || v.GetBool("json") {
		return fmt.Errorf("no network selected, use --network")
	}
	project, err := config.LoadProjectConfig(projectRoot)
	if err != nil {
		return err
	}
	name, err := interactive.SelectNetwork(config.NewNetworkResolver(project).GetNetworks())
	if err != nil {
		return err
	}
	v.Set("network", name)
	return nil
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// ExitCode maps a command error to the process exit status. A ledger that
// could not be written gets its own code since the contracts already exist.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrLedgerPersistenceFailed):
		return ExitLedgerPersistence
	default:
		return ExitFailure
	}
}
