package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/everest-dex/everest-deploy/internal/usecase"
	"github.com/fatih/color"
)

// SpinnerProgressReporter shows a spinner while a step or confirmation is pending
type SpinnerProgressReporter struct {
	spinner   *spinner.Spinner
	out       io.Writer
	stepStart time.Time
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	if out == nil {
		out = os.Stdout
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		spinner: s,
		out:     out,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageStepStarting:
		r.stepStart = time.Now()
		r.spinner.Suffix = fmt.Sprintf(" [%d/%d] %s", event.Current, event.Total, event.Message)
	case usecase.StageConfirming:
		r.spinner.Suffix = fmt.Sprintf(" %s: waiting for nonce confirmation (%s)",
			event.Message, time.Since(r.stepStart).Round(time.Second))
	default:
		if event.Message != "" {
			r.spinner.Suffix = " " + event.Message
		}
	}

	if event.Spinner {
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else {
		r.Stop()
	}
}

// Stop halts the spinner if it is running
func (r *SpinnerProgressReporter) Stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.println(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.println(color.New(color.FgRed), message)
}

func (r *SpinnerProgressReporter) println(c *color.Color, message string) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
