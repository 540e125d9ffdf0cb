package guru

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Page is one rendered document ready for packaging. Pages are produced by
// the host build (rendering is its job, not ours) and are immutable once
// handed to the Builder.
type Page struct {
	// Docname is the slash-separated document path without extension,
	// e.g. "platform/deploy/rollback".
	Docname string
	// Title is the document title. May be empty; the Builder derives a
	// fallback from the docname.
	Title string
	// Body is the rendered HTML fragment.
	Body string
}

const sep = "/"

// EntityID flattens a document path into a single archive-safe identifier.
// Nested paths collapse with dashes so the card set stays flat.
func EntityID(docname string) string {
	return strings.ReplaceAll(norm.NFC.String(docname), sep, "-")
}

// EntityID returns the flattened identifier for the page.
func (p Page) EntityID() string { return EntityID(p.Docname) }

// IsIndex reports whether the page is a section index document. Index
// documents are not packaged as cards; they contribute board structure.
func (p Page) IsIndex() bool { return path.Base(p.Docname) == "index" }

// Tags derives card tags from the document's directory segments. A prefix
// of "Engineering" yields tags like "Engineering:platform".
func (p Page) Tags(prefix string) []string {
	dir := path.Dir(p.Docname)
	if dir == "." || dir == "" {
		return nil
	}
	segments := strings.Split(dir, sep)
	tags := make([]string, 0, len(segments))
	for _, s := range segments {
		if prefix != "" {
			tags = append(tags, prefix+":"+s)
		} else {
			tags = append(tags, s)
		}
	}
	return tags
}

var titleCaser = cases.Title(language.English)

// FallbackTitle derives a human title from a docname when the document
// itself carries none: "getting-started/quick_start" -> "Quick Start".
func FallbackTitle(docname string) string {
	base := path.Base(docname)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCaser.String(base)
}

// DisplayTitle returns the page title, falling back to a docname-derived one.
func (p Page) DisplayTitle() string {
	if strings.TrimSpace(p.Title) != "" {
		return p.Title
	}
	return FallbackTitle(p.Docname)
}
