package host

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/gurupack/internal/guru"
	"git.home.luguber.info/inful/gurupack/internal/logfields"
)

// Driver is the build-orchestration wrapper around the packager: it walks a
// documentation source tree, renders every document, and invokes the
// packager's lifecycle callbacks in walk order. It stands in for the host
// toolchain's build loop.
type Driver struct {
	root     string
	paths    []string // subtrees to include, relative to root; empty means all
	renderer *Renderer
}

// NewDriver creates a driver for one source tree. paths restricts packaging
// to specific subtrees (empty includes everything).
func NewDriver(root string, paths []string, sanitize bool) *Driver {
	return &Driver{
		root:     filepath.Clean(root),
		paths:    paths,
		renderer: NewRenderer(sanitize),
	}
}

// Load enumerates and renders all documents under the source root, in
// lexical walk order, and derives the toctree used for board definitions.
// Markdown documents are rendered; .html documents are taken as pre-rendered
// fragments.
func (d *Driver) Load() ([]guru.Page, guru.Toctree, error) {
	files, err := d.documentFiles()
	if err != nil {
		return nil, guru.Toctree{}, err
	}

	pages := make([]guru.Page, 0, len(files))
	toctree := guru.Toctree{
		Includes: map[string][]string{},
		Titles:   map[string]string{},
	}

	for _, rel := range files {
		src, err := os.ReadFile(filepath.Join(d.root, rel))
		if err != nil {
			return nil, guru.Toctree{}, fmt.Errorf("read document: %w", err)
		}

		docname := Docname(rel)
		var page guru.Page
		if strings.EqualFold(filepath.Ext(rel), ".html") {
			page = guru.Page{Docname: docname, Title: TitleFromFragment(string(src)), Body: string(src)}
		} else {
			title, fragment, err := d.renderer.Render(src)
			if err != nil {
				return nil, guru.Toctree{}, fmt.Errorf("render %s: %w", rel, err)
			}
			page = guru.Page{Docname: docname, Title: title, Body: fragment}
		}

		toctree.Titles[docname] = page.DisplayTitle()
		pages = append(pages, page)
	}

	buildIncludes(&toctree, pages)
	return pages, toctree, nil
}

// Run performs one complete packaging pass: render all documents, register
// board definitions, feed non-index pages to the packager, finish. Returns
// the number of cards packaged.
func (d *Driver) Run(b *guru.Builder) (int, error) {
	pages, toctree, err := d.Load()
	if err != nil {
		return 0, err
	}

	boards, groups := guru.BuildBoards(toctree, b.ExternalURL)
	for _, board := range boards {
		b.AddBoard(board)
	}
	for _, g := range groups {
		b.AddBoardGroup(g)
	}

	cards := 0
	for _, p := range pages {
		if p.IsIndex() {
			// index documents shape boards; they are not cards
			continue
		}
		if err := b.OnPage(p); err != nil {
			return cards, err
		}
		cards++
	}

	if err := b.OnFinish(); err != nil {
		return cards, err
	}
	slog.Debug("Packaging pass complete", logfields.Source(d.root), logfields.Cards(cards))
	return cards, nil
}

// ContentHash computes a deterministic hash over all document files (path
// and content), used to skip rebuilds when nothing changed.
func (d *Driver) ContentHash() (string, error) {
	files, err := d.documentFiles()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, rel := range files {
		h.Write([]byte(rel))
		h.Write([]byte{0})
		data, err := os.ReadFile(filepath.Join(d.root, rel))
		if err != nil {
			return "", fmt.Errorf("hash document: %w", err)
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// documentFiles returns the relative paths of all documents under the
// configured subtrees, sorted for stable ordering.
func (d *Driver) documentFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && p != d.root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".markdown" && ext != ".html" {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !d.included(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source tree %s: %w", d.root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (d *Driver) included(rel string) bool {
	if len(d.paths) == 0 {
		return true
	}
	for _, p := range d.paths {
		p = strings.Trim(filepath.ToSlash(p), "/")
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}

// Docname converts a source-relative file path into a document path:
// extension stripped, slash-separated. "README.md" maps to "index" so a
// repository readme becomes the section index.
func Docname(rel string) string {
	rel = filepath.ToSlash(rel)
	ext := path.Ext(rel)
	docname := strings.TrimSuffix(rel, ext)
	if base := path.Base(docname); strings.EqualFold(base, "README") {
		docname = path.Join(path.Dir(docname), "index")
	}
	return docname
}

// buildIncludes derives toctree includes from the directory structure: each
// directory owning an index document includes its leaf documents and the
// index documents of its direct subdirectories, in lexical order.
func buildIncludes(t *guru.Toctree, pages []guru.Page) {
	hasIndex := map[string]bool{}
	children := map[string][]string{}

	for _, p := range pages {
		if p.IsIndex() {
			hasIndex[path.Dir(p.Docname)] = true
		}
	}
	for _, p := range pages {
		dir := path.Dir(p.Docname)
		if p.IsIndex() {
			if dir == "." {
				continue
			}
			parent := path.Dir(dir)
			if hasIndex[parent] {
				children[parent] = append(children[parent], p.Docname)
			}
			continue
		}
		if hasIndex[dir] {
			children[dir] = append(children[dir], p.Docname)
		}
	}

	for dir, docs := range children {
		sort.Strings(docs)
		index := "index"
		if dir != "." {
			index = path.Join(dir, "index")
		}
		t.Includes[index] = docs
	}
}
