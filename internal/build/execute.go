package build

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/gurupack/internal/config"
	"git.home.luguber.info/inful/gurupack/internal/logfields"
	"git.home.luguber.info/inful/gurupack/internal/metrics"
)

// Execute runs one complete packaging build and returns its report. The
// returned report is non-nil even on failure so callers can inspect partial
// timings and errors.
func Execute(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (*Report, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	report := newReport(uuid.NewString())
	bs := &State{Config: cfg, Report: report}

	slog.Info("Starting guru packaging build",
		logfields.BuildID(report.BuildID),
		logfields.Path(cfg.Output.Directory))

	stages := []StageDef{
		{StageResolveSource, stageResolveSource},
		{StagePackage, stagePackage},
	}
	err := runStages(ctx, bs, stages)
	if bs.Workspace != nil {
		bs.Workspace.Cleanup()
	}

	report.deriveOutcome()
	var se *StageError
	if errors.As(err, &se) && se.Kind == StageErrorCanceled {
		report.Outcome = OutcomeCanceled
	}
	report.finish()

	recorder.ObserveBuildDuration(report.Duration())
	recorder.IncBuildOutcome(string(report.Outcome))
	recorder.SetCards(report.Cards)
	for stage, d := range report.StageDurations {
		recorder.ObserveStageDuration(stage, d)
	}

	if err != nil {
		slog.Error("Guru packaging build failed",
			logfields.BuildID(report.BuildID),
			logfields.Error(err))
		return report, err
	}

	slog.Info("Guru packaging build complete",
		logfields.BuildID(report.BuildID),
		logfields.Cards(report.Cards),
		logfields.Archive(report.ArchivePath),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}
