package progress

import (
	"context"
	"io"

	"github.com/everest-dex/everest-deploy/internal/cli/render"
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

// RunProgress prints the plan up front and one line per finished step
type RunProgress struct {
	plan    *render.PlanRenderer
	steps   *render.DeployRenderer
	spinner *SpinnerProgressReporter
}

func NewRunProgress(out io.Writer) *RunProgress {
	return &RunProgress{
		plan:    render.NewPlanRenderer(out),
		steps:   render.NewDeployRenderer(out),
		spinner: NewSpinnerProgressReporter(out),
	}
}

func (n *RunProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StagePlanCreated:
		n.spinner.Stop()
		if plan, ok := event.Metadata.(*models.DeploymentPlan); ok {
			_ = n.plan.RenderPlan(plan)
		} else {
			n.spinner.Info("Warning: wrong data-type in plan event")
		}
		return
	case usecase.StageStepDone, usecase.StageStepSkipped:
		n.spinner.Stop()
		if outcome, ok := event.Metadata.(*usecase.StepOutcome); ok {
			n.steps.RenderStep(event.Current, event.Total, outcome)
		}
		return
	}

	n.spinner.OnProgress(ctx, event)
}

func (n *RunProgress) Info(message string) {
	n.spinner.Info(message)
}

func (n *RunProgress) Error(message string) {
	n.spinner.Error(message)
}

// Ensure RunProgress implements ProgressSink
var _ usecase.ProgressSink = (*RunProgress)(nil)
