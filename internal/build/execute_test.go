package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gurupack/internal/config"
)

func testConfig(t *testing.T, docs map[string]string) *config.Config {
	t.Helper()
	srcDir := t.TempDir()
	for rel, content := range docs {
		p := filepath.Join(srcDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return &config.Config{
		Source: config.SourceConfig{Directory: srcDir},
		Collection: config.CollectionConfig{
			Title:             "Test Docs",
			PublishedLocation: "https://docs.example.com",
		},
		Output: config.OutputConfig{
			Directory: filepath.Join(t.TempDir(), "guru"),
			Clean:     true,
		},
	}
}

func TestExecuteProducesArchiveAndReport(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"intro.md": "# Intro\n\nHello.\n",
		"guide.md": "# Guide\n\nSteps.\n",
	})

	report, err := Execute(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 2, report.Cards)
	assert.NotEmpty(t, report.BuildID)
	assert.NotEmpty(t, report.ContentHash)
	assert.FileExists(t, report.ArchivePath)
	assert.Contains(t, report.StageDurations, StageResolveSource)
	assert.Contains(t, report.StageDurations, StagePackage)
	assert.False(t, report.End.Before(report.Start))
}

func TestExecuteMissingSourceFails(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Source.Directory = filepath.Join(t.TempDir(), "missing")

	report, err := Execute(context.Background(), cfg, nil)
	require.Error(t, err)
	require.NotNil(t, report)

	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.NotEmpty(t, report.Errors)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageErrorFatal, se.Kind)
	assert.Equal(t, StageResolveSource, se.Stage)
}

func TestExecuteCanceledContext(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.md": "# A\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Execute(ctx, cfg, nil)
	require.Error(t, err)
	assert.Equal(t, OutcomeCanceled, report.Outcome)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageErrorCanceled, se.Kind)
}

func TestReportOutcomeDerivation(t *testing.T) {
	r := newReport("b1")
	r.deriveOutcome()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r.Warnings = append(r.Warnings, "w")
	r.deriveOutcome()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r.Errors = append(r.Errors, "e")
	r.deriveOutcome()
	assert.Equal(t, OutcomeFailed, r.Outcome)
}

func TestReportPersist(t *testing.T) {
	cfg := testConfig(t, map[string]string{"a.md": "# A\n"})
	report, err := Execute(context.Background(), cfg, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, report.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), report.BuildID)
}
