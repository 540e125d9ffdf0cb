package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Collection CollectionConfig `yaml:"collection"`
	Output     OutputConfig     `yaml:"output"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// SourceConfig describes where the documentation tree comes from. Either a
// local directory or a git repository (cloned into an ephemeral workspace).
type SourceConfig struct {
	Directory string      `yaml:"directory,omitempty"`
	Repo      *RepoSource `yaml:"repo,omitempty"`
	// Paths restricts packaging to specific subtrees, defaults to the root.
	Paths []string `yaml:"paths,omitempty"`
}

// RepoSource describes a git repository holding the documentation.
type RepoSource struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents git authentication configuration
type AuthConfig struct {
	Type     string `yaml:"type"` // "ssh", "token", "basic"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// CollectionConfig carries the knowledge-base collection metadata that ends
// up in the archive manifest.
type CollectionConfig struct {
	Title string `yaml:"title"`
	// PublishedLocation is the base URL where the rendered documentation is
	// published. When set, every card gets a link back to its original page.
	PublishedLocation string   `yaml:"published_location,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	// TagPrefix is prepended to directory-derived card tags.
	TagPrefix string `yaml:"tag_prefix,omitempty"`
	// Sanitize strips unsafe markup from card fragments before packaging.
	Sanitize bool `yaml:"sanitize,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// WatchConfig configures continuous rebuild mode.
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	StatePath       string        `yaml:"state_path,omitempty"`
	MetricsAddr     string        `yaml:"metrics_addr,omitempty"`
	NATSURL         string        `yaml:"nats_url,omitempty"`
	NATSSubject     string        `yaml:"nats_subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if present; missing files are fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Collection.Title == "" {
		c.Collection.Title = "Documentation"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./guru"
	}
	if c.Source.Repo != nil && c.Source.Repo.Branch == "" {
		c.Source.Repo.Branch = "main"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Watch.StatePath == "" {
		c.Watch.StatePath = "./gurupack-state.db"
	}
	if c.Watch.NATSSubject == "" {
		c.Watch.NATSSubject = "gurupack.builds"
	}
}

// Validate checks the configuration for contradictions that would only
// surface mid-build otherwise.
func (c *Config) Validate() error {
	if c.Source.Directory != "" && c.Source.Repo != nil {
		return fmt.Errorf("source: directory and repo are mutually exclusive")
	}
	if c.Source.Repo != nil && c.Source.Repo.URL == "" {
		return fmt.Errorf("source: repo requires a url")
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := `# gurupack configuration
source:
  directory: ./docs
  # repo:
  #   url: https://git.example.com/org/docs.git
  #   branch: main

collection:
  title: Engineering Handbook
  published_location: https://docs.example.com
  tag_prefix: Engineering

output:
  directory: ./guru
  clean: true

# watch:
#   debounce: 2s
#   rebuild_interval: 1h
#   metrics_addr: :9090
#   nats_url: nats://localhost:4222
`
	if err := os.WriteFile(configPath, []byte(example), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
