package cli

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewMigrateCmd creates the migrate command group for the bridge migration router
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Operate the bridge migration router",
		Long: `Register migrators and move legacy tokens or liquidity to their upgraded
counterparts through a deployed EverestBridgeMigrationRouter.`,
	}

	cmd.AddCommand(
		newAddMigratorCmd(),
		newMigrateTokenCmd(),
		newMigrateLiquidityCmd(),
		newChargeBackCmd(),
	)
	return cmd
}

// parseAddress validates a hex address flag
func parseAddress(flag, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("--%s: %q is not an address", flag, value)
	}
	return common.HexToAddress(value), nil
}

// parseOptionalAddress accepts an empty value as the zero address
func parseOptionalAddress(flag, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, nil
	}
	return parseAddress(flag, value)
}

// parseAmount parses a base-10 integer amount in the token's smallest unit
func parseAmount(flag, value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("--%s: %q is not a positive integer", flag, value)
	}
	return amount, nil
}

// addressFlags parses every flag value in order, stopping at the first error
func addressFlags(pairs ...[2]string) ([]common.Address, error) {
	out := make([]common.Address, len(pairs))
	for i, p := range pairs {
		addr, err := parseAddress(p[0], p[1])
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

func renderMigrate(cmd *cobra.Command, action string, result *usecase.MigrateResult, runErr error) error {
	if runErr != nil {
		return runErr
	}
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	if app.Config.JSON {
		return render.NewDeployRenderer(cmd.OutOrStdout()).RenderJSON(result)
	}
	return render.NewMigrateRenderer(cmd.OutOrStdout()).RenderMigrate(action, result)
}

func newAddMigratorCmd() *cobra.Command {
	var router, token, migrator string
	var yes bool

	cmd := &cobra.Command{
		Use:         "add-migrator",
		Short:       "Register a migrator for a legacy token (router admins only)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := addressFlags([2]string{"router", router}, [2]string{"token", token}, [2]string{"migrator", migrator})
			if err != nil {
				return err
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.Migrate.AddMigrator(cmd.Context(), usecase.AddMigratorParams{
				Router:   addrs[0],
				Token:    addrs[1],
				Migrator: addrs[2],
				Yes:      yes,
			})
			return renderMigrate(cmd, "Migrator registration", result, err)
		},
	}

	cmd.Flags().StringVar(&router, "router", "", "Bridge migration router address")
	cmd.Flags().StringVar(&token, "token", "", "Legacy token address")
	cmd.Flags().StringVar(&migrator, "migrator", "", "Migrator (bridge token) address")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	for _, f := range []string{"router", "token", "migrator"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newMigrateTokenCmd() *cobra.Command {
	var router, token, recipient, amount string
	var deadline time.Duration
	var yes bool

	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Swap a legacy token for its upgraded version 1:1",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := addressFlags([2]string{"router", router}, [2]string{"token", token})
			if err != nil {
				return err
			}
			to, err := parseOptionalAddress("recipient", recipient)
			if err != nil {
				return err
			}
			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.Migrate.MigrateToken(cmd.Context(), usecase.MigrateTokenParams{
				Router:    addrs[0],
				Token:     addrs[1],
				Recipient: to,
				Amount:    value,
				Deadline:  deadline,
				Yes:       yes,
			})
			return renderMigrate(cmd, "Token migration", result, err)
		},
	}

	cmd.Flags().StringVar(&router, "router", "", "Bridge migration router address")
	cmd.Flags().StringVar(&token, "token", "", "Legacy token address")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Receiver of the upgraded tokens (default deployer)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in the token's smallest unit")
	cmd.Flags().DurationVar(&deadline, "deadline", usecase.DefaultDeadlineWindow, "How long the transaction stays valid")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	for _, f := range []string{"router", "token", "amount"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

type liquidityFlags struct {
	router, source, destination, liquidity string
}

func (f *liquidityFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.router, "router", "", "Bridge migration router address")
	fs.StringVar(&f.source, "source", "", "Legacy pair address")
	fs.StringVar(&f.destination, "destination", "", "Upgraded pair address")
	fs.StringVar(&f.liquidity, "liquidity", "", "Amount of source LP tokens")
	for _, name := range []string{"router", "source", "destination", "liquidity"} {
		_ = cobra.MarkFlagRequired(fs, name)
	}
}

func (f *liquidityFlags) parse() (router, source, destination common.Address, liquidity *big.Int, err error) {
	addrs, err := addressFlags([2]string{"router", f.router}, [2]string{"source", f.source}, [2]string{"destination", f.destination})
	if err != nil {
		return
	}
	liquidity, err = parseAmount("liquidity", f.liquidity)
	if err != nil {
		return
	}
	return addrs[0], addrs[1], addrs[2], liquidity, nil
}

func newMigrateLiquidityCmd() *cobra.Command {
	var flags liquidityFlags
	var recipient string
	var deadline time.Duration
	var yes bool

	cmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Move liquidity from a legacy pair to its upgraded pair",
		Long: `Burn LP tokens of the source pair, migrate each side through its registered
migrator and add the result to the destination pair. Tokens that do not fit
the destination ratio are returned to the recipient as a chargeback, which is
previewed before anything is sent.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			router, source, destination, liquidity, err := flags.parse()
			if err != nil {
				return err
			}
			to, err := parseOptionalAddress("recipient", recipient)
			if err != nil {
				return err
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.Migrate.MigrateLiquidity(cmd.Context(), usecase.MigrateLiquidityParams{
				Router:      router,
				Source:      source,
				Destination: destination,
				Recipient:   to,
				Liquidity:   liquidity,
				Deadline:    deadline,
				Yes:         yes,
			})
			return renderMigrate(cmd, "Liquidity migration", result, err)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&recipient, "recipient", "", "Receiver of the new LP tokens and chargeback (default deployer)")
	cmd.Flags().DurationVar(&deadline, "deadline", usecase.DefaultDeadlineWindow, "How long the transaction stays valid")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newChargeBackCmd() *cobra.Command {
	var flags liquidityFlags

	cmd := &cobra.Command{
		Use:         "chargeback",
		Short:       "Preview the chargeback of a liquidity migration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsNetwork: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			router, source, destination, liquidity, err := flags.parse()
			if err != nil {
				return err
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.Migrate.ChargeBack(cmd.Context(), usecase.ChargeBackParams{
				Router:      router,
				Source:      source,
				Destination: destination,
				Liquidity:   liquidity,
			})
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return render.NewDeployRenderer(cmd.OutOrStdout()).RenderJSON(result)
			}
			return render.NewMigrateRenderer(cmd.OutOrStdout()).RenderChargeBack(result)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
