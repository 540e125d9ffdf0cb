package guru

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/gurupack/internal/logfields"
)

// CardsDir is the working-directory subdirectory holding card fragments.
const CardsDir = "cards"

// Config configures a Builder. It is passed explicitly at construction; the
// Builder reads no global state.
type Config struct {
	// OutputDir is the working directory the archive is assembled in. The
	// zip artifact lands in its parent.
	OutputDir string
	// Clean removes a pre-existing working directory before the first page
	// is written.
	Clean bool
	// Title is the collection title recorded in the manifest.
	Title string
	// PublishedLocation is the base URL of the published documentation.
	// When set, each card links back to its original page.
	PublishedLocation string
	// Tags are collection-level tags recorded in the manifest.
	Tags []string
	// TagPrefix is prepended to directory-derived card tags.
	TagPrefix string
}

// PageSink is the lifecycle contract between the host build and the
// packager: OnPage is invoked once per rendered page, in host order;
// OnFinish exactly once after the last page.
type PageSink interface {
	OnPage(Page) error
	OnFinish() error
}

// Builder packages rendered pages into a guru archive: one HTML file per
// card plus a manifest, zipped next to the output directory. Writes are
// all-or-nothing per build; the first I/O error aborts and surfaces the
// underlying error unchanged. A failed build leaves the working directory
// as-is for inspection.
type Builder struct {
	cfg      Config
	manifest Manifest
	prepared bool
	archive  string // set by OnFinish
}

var _ PageSink = (*Builder)(nil)

// NewBuilder creates a packager for one build.
func NewBuilder(cfg Config) *Builder {
	tags := cfg.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Builder{
		cfg: cfg,
		manifest: Manifest{
			Title:             cfg.Title,
			PublishedLocation: cfg.PublishedLocation,
			Tags:              tags,
			Cards:             []Card{},
		},
	}
}

// prepare creates the working directory on first use.
func (b *Builder) prepare() error {
	if b.prepared {
		return nil
	}
	if b.cfg.Clean {
		if err := os.RemoveAll(b.cfg.OutputDir); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(b.cfg.OutputDir, CardsDir), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	b.prepared = true
	slog.Debug("Initialized working directory", logfields.Path(b.cfg.OutputDir))
	return nil
}

// ExternalURL resolves the published URL of a document, or "" when no
// published location is configured.
func (b *Builder) ExternalURL(docname string) string {
	if b.cfg.PublishedLocation == "" {
		return ""
	}
	return strings.TrimSuffix(b.cfg.PublishedLocation, "/") + "/" + docname
}

// OnPage writes the page's fragment into the working directory and records
// its manifest entry. Entry order matches invocation order.
func (b *Builder) OnPage(p Page) error {
	if err := b.prepare(); err != nil {
		return err
	}

	id := p.EntityID()
	body := p.Body
	if url := b.ExternalURL(p.Docname); url != "" {
		body = appendSourceLink(body, url)
	}

	outPath := filepath.Join(b.cfg.OutputDir, CardsDir, id+".html")
	if err := os.WriteFile(outPath, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write card %s: %w", id, err)
	}

	b.manifest.Cards = append(b.manifest.Cards, Card{
		ID:          id,
		Title:       p.DisplayTitle(),
		Tags:        p.Tags(b.cfg.TagPrefix),
		ExternalID:  p.Docname,
		ExternalURL: b.ExternalURL(p.Docname),
	})

	slog.Debug("Card written", logfields.Docname(p.Docname), logfields.Path(outPath))
	return nil
}

// AddBoard records a board definition for the manifest.
func (b *Builder) AddBoard(board Board) { b.manifest.Boards = append(b.manifest.Boards, board) }

// AddBoardGroup records a board group definition for the manifest.
func (b *Builder) AddBoardGroup(g BoardGroup) {
	b.manifest.BoardGroups = append(b.manifest.BoardGroups, g)
}

// OnFinish serializes the manifest and compresses the working directory
// into the zip artifact. The manifest is written only after every page
// write has succeeded; a zero-page build still yields a manifest with an
// empty card list.
func (b *Builder) OnFinish() error {
	if err := b.prepare(); err != nil {
		return err
	}

	data, err := b.manifest.ToYAML()
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(b.cfg.OutputDir, ManifestName)
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	archivePath, err := Archive(b.cfg.OutputDir)
	if err != nil {
		return err
	}
	b.archive = archivePath

	slog.Info("Guru archive written",
		logfields.Archive(archivePath),
		logfields.Cards(len(b.manifest.Cards)))
	return nil
}

// Manifest exposes the in-progress manifest (read-only usage by callers).
func (b *Builder) Manifest() *Manifest { return &b.manifest }

// ArchivePath returns the zip artifact location after a successful OnFinish.
func (b *Builder) ArchivePath() string { return b.archive }

// appendSourceLink appends a visible link to the original page after the
// fragment body.
func appendSourceLink(body, url string) string {
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body + fmt.Sprintf("<p class=\"guru-source-link\"><a href=%q>View original</a></p>\n", url)
}
