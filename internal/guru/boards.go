package guru

import (
	"path"
	"sort"
	"strings"
)

// Toctree captures the include hierarchy of section index documents: each
// index docname maps to the documents it includes, in order. The host build
// derives it from the source tree.
type Toctree struct {
	// Includes maps an index docname (e.g. "platform/index") to the
	// docnames it includes, in document order.
	Includes map[string][]string
	// Titles maps docnames to their document titles.
	Titles map[string]string
}

func (t Toctree) title(docname string) string {
	if title, ok := t.Titles[docname]; ok && strings.TrimSpace(title) != "" {
		return title
	}
	return FallbackTitle(docname)
}

// sortedIndexes returns the toctree index docnames in deterministic order.
func (t Toctree) sortedIndexes() []string {
	names := make([]string, 0, len(t.Includes))
	for name := range t.Includes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildBoards derives board and board-group definitions from the toctree.
// Every index whose includes contain at least one non-index document yields
// a board; top-level sections with more than one such board yield a group.
// externalURL resolves a docname to its published URL ("" when unset).
func BuildBoards(t Toctree, externalURL func(docname string) string) ([]Board, []BoardGroup) {
	indexes := t.sortedIndexes()

	groups := map[string][]string{}
	var groupOrder []string
	for _, name := range indexes {
		if !hasLeafPage(t.Includes[name]) {
			continue
		}
		top := strings.SplitN(name, sep, 2)[0]
		if _, seen := groups[top]; !seen {
			groupOrder = append(groupOrder, top)
		}
		groups[top] = append(groups[top], strings.TrimSuffix(name, sep+"index"))
	}

	var boardGroups []BoardGroup
	for _, top := range groupOrder {
		boards := groups[top]
		if len(boards) <= 1 {
			continue
		}
		ids := make([]string, 0, len(boards))
		for _, b := range boards {
			ids = append(ids, EntityID(b))
		}
		boardGroups = append(boardGroups, BoardGroup{
			ID:          EntityID(top),
			Title:       t.title(path.Join(top, "index")),
			Description: "",
			Boards:      ids,
			ExternalID:  top,
			ExternalURL: externalURL("index"),
		})
	}

	var boards []Board
	for _, name := range indexes {
		items := boardItems(t.Includes[name])
		if len(items) == 0 {
			continue
		}
		boardID := path.Dir(name)
		if boardID == "." {
			// root toctree: there is no parent directory to name the board after
			boardID = "index"
		}
		boards = append(boards, Board{
			ID:          EntityID(boardID),
			Title:       boardTitle(t, name),
			Description: "",
			Items:       items,
			ExternalID:  name,
			ExternalURL: externalURL(name),
		})
	}

	return boards, boardGroups
}

// boardTitle joins ancestor section titles with the index's own title so
// nested boards stay distinguishable in a flat board list.
func boardTitle(t Toctree, name string) string {
	segments := strings.Split(name, sep)
	var parts []string
	if len(segments) > 1 {
		for i := 1; i < len(segments)-1; i++ {
			parts = append(parts, t.title(path.Join(strings.Join(segments[:i], sep), "index")))
		}
	}
	parts = append(parts, t.title(name))
	return strings.Join(parts, " - ")
}

func hasLeafPage(pages []string) bool {
	for _, p := range pages {
		if !strings.HasSuffix(p, sep+"index") {
			return true
		}
	}
	return false
}

func boardItems(pages []string) []BoardItem {
	var items []BoardItem
	for _, p := range pages {
		if strings.HasSuffix(p, sep+"index") {
			continue
		}
		items = append(items, BoardItem{ID: EntityID(p), Type: "card"})
	}
	return items
}
