package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	stepNameStyle = color.New(color.FgWhite, color.Bold)
	existingStyle = color.New(color.Faint)
	headerStyle   = color.New(color.Bold, color.FgHiWhite)
	title         = cases.Title(language.English)
)

// PlanRenderer prints a deployment plan before it runs
type PlanRenderer struct {
	out io.Writer
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer) *PlanRenderer {
	return &PlanRenderer{out: out}
}

// RenderPlan prints one row per step in execution order
func (r *PlanRenderer) RenderPlan(plan *models.DeploymentPlan) error {
	sends := lo.CountBy(plan.Steps, func(s models.DeploymentStep) bool {
		return !s.Skipped() && s.Kind.SendsTransaction()
	})

	fmt.Fprintf(r.out, "%s %s plan on %s: %d steps, %d transactions\n\n",
		headerStyle.Sprint("📋"), title.String(string(plan.Kind)), plan.Network, len(plan.Steps), sends)

	t := newTable()
	t.AppendHeader(table.Row{"#", "Step", "Action", "Contract", "Details"})
	for i, step := range plan.Steps {
		t.AppendRow(table.Row{
			i + 1,
			stepNameStyle.Sprint(step.Name),
			stepAction(step),
			step.RecordedContract(),
			stepDetails(step),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)
	return nil
}

func stepAction(step models.DeploymentStep) string {
	if step.Skipped() {
		return existingStyle.Sprint("Existing")
	}
	return title.String(string(step.Kind))
}

func stepDetails(step models.DeploymentStep) string {
	if step.Skipped() {
		return existingStyle.Sprint(step.Existing.Hex())
	}
	switch step.Kind {
	case models.StepDeploy:
		refs := lo.Uniq(step.References())
		if len(refs) == 0 {
			return ""
		}
		return "uses " + strings.Join(refs, ", ")
	default:
		details := step.Target + "." + step.Method
		if step.Output != nil && step.Output.Event != "" {
			details += " → " + step.Output.Event + "." + step.Output.Field
		}
		return details
	}
}

func (r *PlanRenderer) Render(plan *models.DeploymentPlan) error { return r.RenderPlan(plan) }
