package render

import (
	"fmt"
	"io"
	"math/big"

	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// MigrateRenderer prints migration router results
type MigrateRenderer struct {
	out io.Writer
}

// NewMigrateRenderer creates a new migrate renderer
func NewMigrateRenderer(out io.Writer) *MigrateRenderer {
	return &MigrateRenderer{out: out}
}

// RenderMigrate prints the transactions a migration command sent
func (r *MigrateRenderer) RenderMigrate(action string, result *usecase.MigrateResult) error {
	if result == nil {
		return nil
	}
	if result.Cancelled {
		fmt.Fprintf(r.out, "%s cancelled.\n", action)
		return nil
	}
	if result.ChargeBack != nil {
		if err := r.RenderChargeBack(result.ChargeBack); err != nil {
			return err
		}
		fmt.Fprintln(r.out)
	}
	for _, tx := range result.Transactions {
		fmt.Fprintf(r.out, "%s %s\n", color.GreenString("✓"), tx.TxHash.Hex())
		fmt.Fprintf(r.out, "   └─ %s\n", faintStyle.Sprintf("Block: %d | Gas: %d", tx.BlockNumber, tx.GasUsed))
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s complete", action)))
	return nil
}

// RenderChargeBack prints the router's quote beside the local recomputation
func (r *MigrateRenderer) RenderChargeBack(result *usecase.ChargeBackResult) error {
	m := result.Mapping
	fmt.Fprintf(r.out, "%s %s → %s\n", headerStyle.Sprint("🔁"), m.Source.Hex(), m.Destination.Hex())
	fmt.Fprintf(r.out, "%s\n\n", faintStyle.Sprintf("migrator %s", FormatAddress(m.Migrator)))

	t := newTable()
	t.AppendHeader(table.Row{"Token", "Router", "Local"})
	var local0, local1 *big.Int
	if result.Local != nil {
		local0, local1 = result.Local.ChargeBack0, result.Local.ChargeBack1
	}
	t.AppendRow(table.Row{result.OnChain.Token0.Hex(), amount(result.OnChain.Amount0), amount(local0)})
	t.AppendRow(table.Row{result.OnChain.Token1.Hex(), amount(result.OnChain.Amount1), amount(local1)})
	fmt.Fprintln(r.out, t.Render())

	if result.Local != nil && result.Local.Minted != nil {
		fmt.Fprintf(r.out, "Expected liquidity minted: %s\n", result.Local.Minted.String())
	}
	if !result.Matches {
		fmt.Fprintln(r.out, FormatWarning("local quote differs from the router, pool reserves may have moved"))
	}
	return nil
}

func amount(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

func (r *MigrateRenderer) Render(result *usecase.ChargeBackResult) error {
	return r.RenderChargeBack(result)
}
