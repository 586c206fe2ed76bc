package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pagescan/pagescan/internal/model"
)

// testLogger returns a logger that swallows all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingStep records its execution and optionally fails.
type recordingStep struct {
	name     string
	err      error
	executed *[]string
}

func (s *recordingStep) Do(_ context.Context, _ *model.ScrapeReport) error {
	*s.executed = append(*s.executed, s.name)
	return s.err
}

func (s *recordingStep) Name() string { return s.name }

// TestPipelineExecutesStepsInOrder tests sequential step execution.
func TestPipelineExecutesStepsInOrder(t *testing.T) {
	t.Parallel()

	var executed []string
	p := New(WithLogger(testLogger()))
	p.AddSteps(
		&recordingStep{name: "first", executed: &executed},
		&recordingStep{name: "second", executed: &executed},
		&recordingStep{name: "third", executed: &executed},
	)

	report := model.NewScrapeReport("https://example.com")
	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if len(executed) != 3 || executed[0] != "first" || executed[2] != "third" {
		t.Errorf("unexpected execution order: %v", executed)
	}
	if len(report.PerformedSteps) != 3 {
		t.Errorf("expected 3 performed steps, got %v", report.PerformedSteps)
	}
}

// TestPipelineStopsOnError tests the default stop-on-error behavior.
func TestPipelineStopsOnError(t *testing.T) {
	t.Parallel()

	var executed []string
	stepErr := errors.New("step broke")
	p := New(WithLogger(testLogger()))
	p.AddSteps(
		&recordingStep{name: "first", err: stepErr, executed: &executed},
		&recordingStep{name: "second", executed: &executed},
	)

	report := model.NewScrapeReport("https://example.com")
	err := p.Execute(context.Background(), report)
	if !errors.Is(err, stepErr) {
		t.Fatalf("expected step error, got %v", err)
	}

	if len(executed) != 1 {
		t.Errorf("expected execution to stop after failure, ran %v", executed)
	}
	if !report.Failed || report.ErrorMessage != "step broke" {
		t.Errorf("expected failure recorded in report, got %+v", report)
	}
}

// TestPipelineContinueOnError tests that later steps still run and the
// failure stays recorded.
func TestPipelineContinueOnError(t *testing.T) {
	t.Parallel()

	var executed []string
	stepErr := errors.New("step broke")
	p := New(WithLogger(testLogger()), WithContinueOnError(true))
	p.AddSteps(
		&recordingStep{name: "first", err: stepErr, executed: &executed},
		&recordingStep{name: "second", executed: &executed},
	)

	report := model.NewScrapeReport("https://example.com")
	err := p.Execute(context.Background(), report)
	if !errors.Is(err, stepErr) {
		t.Fatalf("expected step error returned after completion, got %v", err)
	}

	if len(executed) != 2 {
		t.Errorf("expected both steps to run, ran %v", executed)
	}
	if !report.Failed {
		t.Error("expected failure recorded in report")
	}
}

// TestPipelineCancellation tests context cancellation between steps.
func TestPipelineCancellation(t *testing.T) {
	t.Parallel()

	var executed []string
	p := New(WithLogger(testLogger()))
	p.AddStep(&recordingStep{name: "never", executed: &executed})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := model.NewScrapeReport("https://example.com")
	err := p.Execute(ctx, report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(executed) != 0 {
		t.Errorf("expected no steps executed after cancellation, ran %v", executed)
	}
	if !report.Failed {
		t.Error("expected cancellation recorded as failure")
	}
}

// TestPipelineStepNames tests step introspection.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	var executed []string
	p := New(WithLogger(testLogger()))
	p.AddSteps(
		&recordingStep{name: "a", executed: &executed},
		&recordingStep{name: "b", executed: &executed},
	)

	if p.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected step names: %v", names)
	}
}
