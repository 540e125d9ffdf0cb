package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gurupack/internal/build"
	"git.home.luguber.info/inful/gurupack/internal/config"
	"git.home.luguber.info/inful/gurupack/internal/events"
	"git.home.luguber.info/inful/gurupack/internal/metrics"
	"git.home.luguber.info/inful/gurupack/internal/state"
	"git.home.luguber.info/inful/gurupack/internal/version"
	"git.home.luguber.info/inful/gurupack/internal/watch"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"gurupack.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output string `short:"o" help:"Working directory for archive assembly (overrides config)"`
		Report string `help:"Write a JSON build report to this path"`
	} `cmd:"" help:"Package the documentation into a guru archive"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Output string `short:"o" help:"Working directory for archive assembly (overrides config)"`
	} `cmd:"" help:"Continuously rebuild the archive on source changes"`
}

func main() {
	ctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	switch ctx.Command() {
	case "build":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Build.Output != "" {
			cfg.Output.Directory = CLI.Build.Output
		}
		if err := runBuild(cfg, CLI.Build.Report); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	case "watch":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Watch.Output != "" {
			cfg.Output.Directory = CLI.Watch.Output
		}
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	// Refine logging once config is known; CLI verbosity wins.
	level := cfg.Logging.SlogLevel()
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.JSONFormat() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
	return cfg, nil
}

func runBuild(cfg *config.Config, reportPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := build.Execute(ctx, cfg, nil)
	if reportPath != "" && report != nil {
		if perr := report.Persist(reportPath); perr != nil {
			slog.Warn("Failed to persist build report", "error", perr)
		}
	}
	if report != nil {
		recordBuild(ctx, cfg, report)
	}
	return err
}

// recordBuild appends the build outcome to the state store so one-shot
// builds share history with watch mode. Best effort.
func recordBuild(ctx context.Context, cfg *config.Config, report *build.Report) {
	store, err := state.Open(cfg.Watch.StatePath)
	if err != nil {
		slog.Warn("Failed to open state store", "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, state.BuildRecord{
		BuildID:     report.BuildID,
		ContentHash: report.ContentHash,
		ArchivePath: report.ArchivePath,
		Cards:       report.Cards,
		Outcome:     string(report.Outcome),
	}); err != nil {
		slog.Warn("Failed to record build", "error", err)
	}
}

func runWatch(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := state.Open(cfg.Watch.StatePath)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	var publisher *events.Publisher
	if cfg.Watch.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.Watch.NATSURL, cfg.Watch.NATSSubject)
		if err != nil {
			return fmt.Errorf("connect event publisher: %w", err)
		}
		defer publisher.Close()
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Watch.MetricsAddr != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	w, err := watch.New(cfg, store, publisher, recorder)
	if err != nil {
		return err
	}

	slog.Info("Watching documentation source", "source", cfg.Source.Directory, "output", cfg.Output.Directory)
	return w.Run(ctx)
}
