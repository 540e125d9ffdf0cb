// Package watch implements continuous rebuild mode: the archive is
// repackaged whenever the documentation source changes, on an optional
// periodic schedule, with build records persisted and completion events
// published for downstream upload automation.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/gurupack/internal/build"
	"git.home.luguber.info/inful/gurupack/internal/config"
	"git.home.luguber.info/inful/gurupack/internal/events"
	"git.home.luguber.info/inful/gurupack/internal/host"
	"git.home.luguber.info/inful/gurupack/internal/logfields"
	"git.home.luguber.info/inful/gurupack/internal/metrics"
	"git.home.luguber.info/inful/gurupack/internal/state"
)

// Watcher rebuilds the guru archive whenever the source tree changes.
type Watcher struct {
	cfg       *config.Config
	store     *state.Store
	publisher *events.Publisher // nil when eventing is not configured
	recorder  metrics.Recorder

	fsw       *fsnotify.Watcher
	scheduler gocron.Scheduler // nil unless a rebuild interval is set
	trigger   chan string
	debounce  time.Duration
}

// New constructs a watcher. store is required; publisher may be nil.
func New(cfg *config.Config, store *state.Store, publisher *events.Publisher, recorder metrics.Recorder) (*Watcher, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	w := &Watcher{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		trigger:   make(chan string, 1),
		debounce:  cfg.Watch.Debounce,
	}

	if cfg.Source.Directory != "" {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create file watcher: %w", err)
		}
		w.fsw = fsw
	}

	if cfg.Watch.RebuildInterval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		w.scheduler = s
	}

	return w, nil
}

// Run blocks until the context is canceled, rebuilding on source changes
// and on schedule. An initial build runs at startup.
func (w *Watcher) Run(ctx context.Context) error {
	if w.fsw != nil {
		if err := w.watchTree(w.cfg.Source.Directory); err != nil {
			return err
		}
		go w.watchLoop(ctx)
	}

	if w.scheduler != nil {
		_, err := w.scheduler.NewJob(
			gocron.DurationJob(w.cfg.Watch.RebuildInterval),
			gocron.NewTask(func() { w.requestRebuild("schedule") }),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		w.scheduler.Start()
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	if w.cfg.Watch.MetricsAddr != "" {
		go w.serveMetrics(ctx)
	}

	w.rebuild(ctx, "startup")

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := ""
	for {
		select {
		case <-ctx.Done():
			if w.fsw != nil {
				_ = w.fsw.Close()
			}
			return nil
		case reason := <-w.trigger:
			pending = reason
			timer.Reset(w.debounce)
		case <-timer.C:
			w.rebuild(ctx, pending)
			pending = ""
		}
	}
}

// requestRebuild coalesces rebuild requests; an already-pending request wins.
func (w *Watcher) requestRebuild(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

// watchTree adds the source directory and all its subdirectories to the
// file watcher (fsnotify does not recurse).
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				// new directories need their own watch
				_ = w.watchTree(w.cfg.Source.Directory)
			}
			w.requestRebuild("change:" + ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// rebuild runs one packaging build unless the source content is unchanged
// since the last successful build.
func (w *Watcher) rebuild(ctx context.Context, reason string) {
	if skip, hash := w.unchanged(ctx); skip {
		slog.Info("Source unchanged since last successful build; skipping rebuild",
			slog.String("reason", reason), slog.String("content_hash", hash[:12]))
		return
	}

	slog.Info("Rebuilding guru archive", slog.String("reason", reason))
	report, err := build.Execute(ctx, w.cfg, w.recorder)
	if err != nil && ctx.Err() != nil {
		return
	}

	if rerr := w.store.Record(ctx, state.BuildRecord{
		BuildID:     report.BuildID,
		ContentHash: report.ContentHash,
		ArchivePath: report.ArchivePath,
		Cards:       report.Cards,
		Outcome:     string(report.Outcome),
	}); rerr != nil {
		slog.Warn("Failed to record build", logfields.Error(rerr))
	}

	if w.publisher != nil {
		w.publisher.PublishBuildCompleted(events.BuildCompleted{
			BuildID:     report.BuildID,
			Outcome:     string(report.Outcome),
			Cards:       report.Cards,
			ArchivePath: report.ArchivePath,
			ContentHash: report.ContentHash,
		})
	}
}

// unchanged reports whether the current source content hash matches the
// last successful build. Only local-directory sources support the check;
// repo sources always rebuild.
func (w *Watcher) unchanged(ctx context.Context) (bool, string) {
	if w.cfg.Source.Directory == "" {
		return false, ""
	}
	driver := host.NewDriver(w.cfg.Source.Directory, w.cfg.Source.Paths, w.cfg.Collection.Sanitize)
	hash, err := driver.ContentHash()
	if err != nil || hash == "" {
		return false, ""
	}
	last, err := w.store.LastSuccessfulHash(ctx)
	if err != nil || last == "" {
		return false, ""
	}
	return hash == last, hash
}

// serveMetrics exposes the Prometheus registry when the recorder supports it.
func (w *Watcher) serveMetrics(ctx context.Context) {
	pr, ok := w.recorder.(*metrics.PrometheusRecorder)
	if !ok {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", pr.Handler())
	srv := &http.Server{Addr: w.cfg.Watch.MetricsAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("Serving metrics", slog.String("addr", w.cfg.Watch.MetricsAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Warn("Metrics server stopped", logfields.Error(err))
	}
}
