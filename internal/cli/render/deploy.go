package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/everest-dex/everest-deploy/internal/domain"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	addressStyle = color.New(color.FgCyan)
	faintStyle   = color.New(color.Faint)
	failedStyle  = color.New(color.FgRed, color.Bold)
)

// DeployRenderer prints step progress and the final deployment summary
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// RenderStep prints a single finished step
func (r *DeployRenderer) RenderStep(current, total int, outcome *usecase.StepOutcome) {
	prefix := faintStyle.Sprintf("[%d/%d]", current, total)
	step := outcome.Step

	switch outcome.Status {
	case usecase.StepSkipped:
		fmt.Fprintf(r.out, "%s %s %s %s\n", prefix, faintStyle.Sprint("↷"), stepNameStyle.Sprint(step.Name),
			faintStyle.Sprintf("existing at %s", outcome.Address.Hex()))
	case usecase.StepFailed:
		fmt.Fprintf(r.out, "%s %s %s\n", prefix, failedStyle.Sprint("✗"), stepNameStyle.Sprint(step.Name))
		if outcome.Error != nil {
			fmt.Fprintf(r.out, "   └─ %s\n", color.RedString(outcome.Error.Error()))
		}
	default:
		fmt.Fprintf(r.out, "%s %s %s", prefix, color.GreenString("✓"), stepNameStyle.Sprint(step.Name))
		if step.Produces() {
			fmt.Fprintf(r.out, " → %s", addressStyle.Sprint(outcome.Address.Hex()))
		}
		fmt.Fprintln(r.out)
		if outcome.Tx != nil {
			fmt.Fprintf(r.out, "   └─ %s\n", faintStyle.Sprintf("Tx: %s | Block: %d | Gas: %d",
				outcome.Tx.TxHash.Hex(), outcome.Tx.BlockNumber, outcome.Tx.GasUsed))
		}
	}
}

// RenderResult prints the summary of a run. runErr is the error the run
// returned, if any.
func (r *DeployRenderer) RenderResult(result *usecase.RunDeploymentResult, runErr error) error {
	if result == nil {
		return nil
	}
	if result.DryRun {
		fmt.Fprintln(r.out, FormatWarning("Dry run: no transactions were sent"))
		return nil
	}
	if result.Cancelled {
		fmt.Fprintln(r.out, "Deployment cancelled.")
		return nil
	}

	fmt.Fprintln(r.out)
	if result.LastStep != "" {
		fmt.Fprintf(r.out, "Last completed step: %s\n", stepNameStyle.Sprint(result.LastStep))
	}
	if result.FailedStep != "" {
		fmt.Fprintf(r.out, "Failed step: %s\n", failedStyle.Sprint(result.FailedStep))
	}
	if cost := result.DeployCost(); cost != nil {
		fmt.Fprintf(r.out, "Deploy cost: %s\n", FormatEther(cost))
	}

	var persistErr *domain.LedgerPersistenceErr
	switch {
	case errors.As(runErr, &persistErr):
		// The contracts exist on chain, so the operator needs the records somehow
		fmt.Fprintln(r.out, FormatError(persistErr.Error()))
		fmt.Fprintln(r.out, "Ledger contents:")
		return r.dumpLedger(result.Ledger)
	case runErr != nil:
		if result.Ledger != nil && len(result.Ledger.Records) > 0 {
			fmt.Fprintf(r.out, "Partial ledger: %s\n", usecase.PartialDestination(result.Destination))
		}
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Ledger written to %s", result.Destination)))
	return nil
}

// RenderLedger prints every record of a ledger file as a table
func (r *DeployRenderer) RenderLedger(destination string, ledger *models.LedgerFile) error {
	fmt.Fprintf(r.out, "%s %s (chain %d, %s run)\n", headerStyle.Sprint("📒"), ledger.Network, ledger.ChainID, ledger.Run)
	fmt.Fprintf(r.out, "%s\n", faintStyle.Sprintf("%s | deployer %s | run %s", destination, FormatAddress(ledger.Deployer), ledger.RunID))
	fmt.Fprintln(r.out)

	if len(ledger.Records) == 0 {
		fmt.Fprintln(r.out, "No deployments recorded")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"Step", "Contract", "Address", "Block"})
	for _, rec := range ledger.Records {
		t.AppendRow(table.Row{
			stepNameStyle.Sprint(rec.Step),
			rec.Contract,
			addressStyle.Sprint(rec.Address.Hex()),
			rec.BlockNumber,
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderJSON writes v as indented JSON
func (r *DeployRenderer) RenderJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *DeployRenderer) dumpLedger(ledger *models.LedgerFile) error {
	if ledger == nil {
		return nil
	}
	return r.RenderJSON(ledger)
}
