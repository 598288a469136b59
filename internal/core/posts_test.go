package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filterFragment returns the FROM/WHERE portion of a query with whitespace
// collapsed, so a list query and its count query can be compared on the
// filter they apply.
func filterFragment(t *testing.T, query string) string {
	t.Helper()

	start := strings.Index(query, "FROM")
	require.GreaterOrEqual(t, start, 0, "query has no FROM clause: %s", query)

	fragment := query[start:]
	for _, marker := range []string{"ORDER BY", "LIMIT"} {
		if i := strings.Index(fragment, marker); i >= 0 {
			fragment = fragment[:i]
		}
	}

	return strings.Join(strings.Fields(fragment), " ")
}

func TestListAndCountQueriesApplyTheSameFilter(t *testing.T) {
	tests := []struct {
		name  string
		list  string
		count string
	}{
		{"all published", listPostsSQL(false), countPostsSQL(false)},
		{"all including drafts", listPostsSQL(true), countPostsSQL(true)},
		{"by author published", listPostsByAuthorSQL(false), countPostsByAuthorSQL(false)},
		{"by author including drafts", listPostsByAuthorSQL(true), countPostsByAuthorSQL(true)},
		{"by tag", listPostsByTagSQL(), countPostsByTagSQL()},
		{"search", searchPostsSQL(), countSearchResultsSQL()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filterFragment(t, tt.count), filterFragment(t, tt.list),
				"the count query must apply exactly the filter its list query applies")
		})
	}
}

func TestPostQueriesExcludeDrafts(t *testing.T) {
	assert.Contains(t, filterFragment(t, listPostsSQL(false)), publishedOnly)
	assert.NotContains(t, filterFragment(t, listPostsSQL(true)), publishedOnly)
	assert.Contains(t, filterFragment(t, listPostsByAuthorSQL(false)), publishedOnly)

	// Tag and search views are public-facing and never include drafts.
	assert.Contains(t, filterFragment(t, listPostsByTagSQL()), publishedOnly)
	assert.Contains(t, filterFragment(t, searchPostsSQL()), publishedOnly)
}
