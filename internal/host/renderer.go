package host

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer converts Markdown documents into the HTML fragments the packager
// consumes.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy // nil disables sanitization
}

// NewRenderer creates a Markdown renderer. With sanitize set, rendered
// fragments pass through a UGC sanitization policy before packaging.
func NewRenderer(sanitize bool) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
	}
	if sanitize {
		r.sanitizer = bluemonday.UGCPolicy()
	}
	return r
}

// Render converts a Markdown document into an HTML fragment and its title.
// The leading level-1 heading becomes the title and is removed from the
// fragment; the knowledge base renders the title itself and would otherwise
// duplicate it. Returns an empty title when the document has none.
func (r *Renderer) Render(src []byte) (title, fragment string, err error) {
	doc := r.md.Parser().Parse(text.NewReader(src))

	if h := leadingHeading(doc); h != nil {
		title = nodeText(h, src)
		doc.RemoveChild(doc, h)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}

	fragment = buf.String()
	if r.sanitizer != nil {
		fragment = r.sanitizer.Sanitize(fragment)
	}
	return title, fragment, nil
}

// leadingHeading returns the document's first child when it is an h1.
func leadingHeading(doc ast.Node) ast.Node {
	first := doc.FirstChild()
	if h, ok := first.(*ast.Heading); ok && h.Level == 1 {
		return h
	}
	return nil
}

// nodeText collects the plain text content of a node's subtree.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
