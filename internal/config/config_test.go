package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gurupack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  directory: ./docs
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Documentation", cfg.Collection.Title)
	assert.Equal(t, "./guru", cfg.Output.Directory)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "gurupack.builds", cfg.Watch.NATSSubject)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
source:
  repo:
    url: https://git.example.com/org/docs.git
  paths: [docs, guides]
collection:
  title: Handbook
  published_location: https://docs.example.com
  tag_prefix: Engineering
  sanitize: true
output:
  directory: ./out
  clean: true
watch:
  debounce: 5s
  rebuild_interval: 1h
  metrics_addr: ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Source.Repo)
	assert.Equal(t, "main", cfg.Source.Repo.Branch, "branch defaults to main")
	assert.Equal(t, []string{"docs", "guides"}, cfg.Source.Paths)
	assert.Equal(t, "Handbook", cfg.Collection.Title)
	assert.True(t, cfg.Collection.Sanitize)
	assert.Equal(t, 5*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, time.Hour, cfg.Watch.RebuildInterval)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCS_BASE_URL", "https://internal.example.com")
	path := writeConfig(t, `
source:
  directory: ./docs
collection:
  published_location: ${DOCS_BASE_URL}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://internal.example.com", cfg.Collection.PublishedLocation)
}

func TestLoadRejectsConflictingSources(t *testing.T) {
	path := writeConfig(t, `
source:
  directory: ./docs
  repo:
    url: https://git.example.com/org/docs.git
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadRejectsRepoWithoutURL(t *testing.T) {
	path := writeConfig(t, `
source:
  repo:
    branch: main
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gurupack.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))
}

func TestInitProducesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gurupack.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Engineering Handbook", cfg.Collection.Title)
	assert.Equal(t, "./docs", cfg.Source.Directory)
}

func TestLoggingConfig(t *testing.T) {
	assert.Equal(t, "INFO", LoggingConfig{}.SlogLevel().String())
	assert.Equal(t, "DEBUG", LoggingConfig{Level: "debug"}.SlogLevel().String())
	assert.Equal(t, "WARN", LoggingConfig{Level: "Warning"}.SlogLevel().String())
	assert.Equal(t, "ERROR", LoggingConfig{Level: "error"}.SlogLevel().String())
	assert.True(t, LoggingConfig{Format: "JSON"}.JSONFormat())
	assert.False(t, LoggingConfig{Format: "text"}.JSONFormat())
}
