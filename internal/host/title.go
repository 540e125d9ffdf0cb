package host

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TitleFromFragment extracts the text of the first h1 (falling back to h2)
// in an already-rendered HTML fragment. Used for documents the host hands
// over pre-rendered, where no Markdown source is available.
func TitleFromFragment(fragment string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return ""
	}
	for _, level := range []atom.Atom{atom.H1, atom.H2} {
		for _, n := range nodes {
			if found := findHeading(n, level); found != nil {
				return strings.TrimSpace(textContent(found))
			}
		}
	}
	return ""
}

func findHeading(n *html.Node, level atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == level {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findHeading(c, level); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
