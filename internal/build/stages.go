package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/gurupack/internal/config"
	"git.home.luguber.info/inful/gurupack/internal/guru"
	"git.home.luguber.info/inful/gurupack/internal/host"
	"git.home.luguber.info/inful/gurupack/internal/source"
)

// Stage is a discrete unit of work in the packaging build.
type Stage func(ctx context.Context, bs *State) error

// StageDef pairs a stage with its name for timing and error reporting.
type StageDef struct {
	Name string
	Fn   Stage
}

// Stage names.
const (
	StageResolveSource = "resolve_source"
	StagePackage       = "package"
)

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// State carries mutable state across stages for one build.
type State struct {
	Config    *config.Config
	Workspace *source.Workspace
	Driver    *host.Driver
	Builder   *guru.Builder
	Report    *Report
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warnings are recorded and execution continues.
func runStages(ctx context.Context, bs *State, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		default:
		}
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		bs.Report.StageDurations[st.Name] = time.Since(t0)
		if err == nil {
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors are fatal by default.
			se = newFatalStageError(st.Name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.Warnings = append(bs.Report.Warnings, se.Error())
		default:
			bs.Report.Errors = append(bs.Report.Errors, se.Error())
			return se
		}
	}
	return nil
}

// stageResolveSource resolves the documentation tree (local dir or clone)
// and constructs the driver and packager for this build.
func stageResolveSource(ctx context.Context, bs *State) error {
	ws, err := source.Resolve(ctx, bs.Config.Source)
	if err != nil {
		return newFatalStageError(StageResolveSource, err)
	}
	bs.Workspace = ws
	bs.Driver = host.NewDriver(ws.Dir, bs.Config.Source.Paths, bs.Config.Collection.Sanitize)
	bs.Builder = guru.NewBuilder(guru.Config{
		OutputDir:         bs.Config.Output.Directory,
		Clean:             bs.Config.Output.Clean,
		Title:             bs.Config.Collection.Title,
		PublishedLocation: bs.Config.Collection.PublishedLocation,
		Tags:              bs.Config.Collection.Tags,
		TagPrefix:         bs.Config.Collection.TagPrefix,
	})
	if hash, err := bs.Driver.ContentHash(); err == nil {
		bs.Report.ContentHash = hash
	}
	return nil
}

// stagePackage renders all documents and streams them through the packager.
func stagePackage(ctx context.Context, bs *State) error {
	cards, err := bs.Driver.Run(bs.Builder)
	bs.Report.Cards = cards
	if err != nil {
		return newFatalStageError(StagePackage, err)
	}
	bs.Report.ArchivePath = bs.Builder.ArchivePath()
	return nil
}
