// Package source resolves the documentation source tree for a build: either
// a local directory, or a git repository cloned into an ephemeral workspace.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	gossh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/gurupack/internal/config"
	"git.home.luguber.info/inful/gurupack/internal/logfields"
)

// Workspace is a resolved source tree. Cleanup removes any ephemeral clone
// directory; for local-directory sources it is a no-op.
type Workspace struct {
	Dir       string
	ephemeral bool
}

// Cleanup removes the workspace when it was created for this build.
func (w *Workspace) Cleanup() {
	if !w.ephemeral || w.Dir == "" {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		slog.Warn("Failed to cleanup source workspace", logfields.Path(w.Dir), logfields.Error(err))
	}
}

// Resolve produces the source tree for one build. A configured repo is
// cloned fresh into a timestamped temp directory; otherwise the configured
// local directory is validated and used in place.
func Resolve(ctx context.Context, src config.SourceConfig) (*Workspace, error) {
	if src.Repo != nil {
		dir, err := clone(ctx, src.Repo)
		if err != nil {
			return nil, err
		}
		return &Workspace{Dir: dir, ephemeral: true}, nil
	}

	info, err := os.Stat(src.Directory)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory %s is not a directory", src.Directory)
	}
	return &Workspace{Dir: src.Directory}, nil
}

// clone performs a single-branch clone of the documentation repository.
func clone(ctx context.Context, repo *config.RepoSource) (string, error) {
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("gurupack-%s", time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create clone workspace: %w", err)
	}

	opts := &gogit.CloneOptions{URL: repo.URL, Depth: 1}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		opts.SingleBranch = true
	}
	if repo.Auth != nil {
		auth, err := authMethod(repo.Auth)
		if err != nil {
			return "", fmt.Errorf("setup authentication: %w", err)
		}
		opts.Auth = auth
	}

	slog.Debug("Cloning documentation repository", logfields.Source(repo.URL), slog.String("branch", repo.Branch), logfields.Path(dir))
	repository, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("clone %s: %w", repo.URL, err)
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Documentation repository cloned", logfields.Source(repo.URL), slog.String("commit", ref.Hash().String()[:8]))
	}
	return dir, nil
}

// authMethod maps an AuthConfig onto a go-git transport auth method.
func authMethod(cfg *config.AuthConfig) (transport.AuthMethod, error) {
	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires a token")
		}
		// go-git models token auth over HTTP as basic auth with the token as password
		return &http.BasicAuth{Username: "token", Password: cfg.Token}, nil
	case "basic":
		return &http.BasicAuth{Username: cfg.Username, Password: cfg.Password}, nil
	case "ssh":
		if cfg.KeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires key_path")
		}
		return gossh.NewPublicKeysFromFile("git", cfg.KeyPath, "")
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", cfg.Type)
	}
}
