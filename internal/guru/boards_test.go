package guru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noURL(string) string { return "" }

func TestBuildBoardsFromToctree(t *testing.T) {
	tree := Toctree{
		Includes: map[string][]string{
			"platform/index":        {"platform/setup", "platform/deploy/index"},
			"platform/deploy/index": {"platform/deploy/rollback"},
		},
		Titles: map[string]string{
			"platform/index":           "Platform",
			"platform/deploy/index":    "Deployments",
			"platform/setup":           "Setup",
			"platform/deploy/rollback": "Rollback",
		},
	}

	boards, groups := BuildBoards(tree, noURL)

	require.Len(t, boards, 2)
	// sorted index order: platform/deploy/index before platform/index
	assert.Equal(t, "platform-deploy", boards[0].ID)
	assert.Equal(t, "Platform - Deployments", boards[0].Title)
	assert.Equal(t, []BoardItem{{ID: "platform-deploy-rollback", Type: "card"}}, boards[0].Items)

	assert.Equal(t, "platform", boards[1].ID)
	assert.Equal(t, "Platform", boards[1].Title)
	assert.Equal(t, []BoardItem{{ID: "platform-setup", Type: "card"}}, boards[1].Items)

	require.Len(t, groups, 1)
	assert.Equal(t, "platform", groups[0].ID)
	assert.Equal(t, []string{"platform-deploy", "platform"}, groups[0].Boards)
}

func TestBuildBoardsSkipsIndexOnlySections(t *testing.T) {
	tree := Toctree{
		Includes: map[string][]string{
			"index": {"platform/index"},
		},
		Titles: map[string]string{"index": "Home"},
	}

	boards, groups := BuildBoards(tree, noURL)
	assert.Empty(t, boards, "sections holding only sub-indexes yield no boards")
	assert.Empty(t, groups)
}

func TestBuildBoardsSingleBoardNoGroup(t *testing.T) {
	tree := Toctree{
		Includes: map[string][]string{
			"guides/index": {"guides/start"},
		},
		Titles: map[string]string{"guides/index": "Guides", "guides/start": "Start"},
	}

	boards, groups := BuildBoards(tree, noURL)
	require.Len(t, boards, 1)
	assert.Equal(t, "guides", boards[0].ID)
	assert.Empty(t, groups, "a single board forms no group")
}

func TestBuildBoardsExternalURLs(t *testing.T) {
	tree := Toctree{
		Includes: map[string][]string{
			"guides/index": {"guides/start"},
		},
		Titles: map[string]string{},
	}

	boards, _ := BuildBoards(tree, func(docname string) string {
		return "https://docs.example.com/" + docname
	})
	require.Len(t, boards, 1)
	assert.Equal(t, "https://docs.example.com/guides/index", boards[0].ExternalURL)
}
