package build

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Outcome classifies a finished build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report records the timings and results of one packaging build.
type Report struct {
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Cards          int                      `json:"cards"`
	ContentHash    string                   `json:"content_hash,omitempty"`
	ArchivePath    string                   `json:"archive_path,omitempty"`
	Outcome        Outcome                  `json:"outcome"`
	Errors         []string                 `json:"errors,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: map[string]time.Duration{},
	}
}

func (r *Report) finish() { r.End = time.Now() }

// deriveOutcome sets the final outcome from recorded errors and warnings.
func (r *Report) deriveOutcome() {
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the total build duration.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Persist writes the report to the given path (best effort use by callers).
func (r *Report) Persist(path string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
