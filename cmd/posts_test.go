package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/models"
)

func TestAssemblePostEnvelopesMissingAuthor(t *testing.T) {
	now := time.Now()
	posts := []*models.Post{
		{ID: 1, Title: "Kept", Slug: "kept", AuthorID: 7, Published: true, CreatedAt: now},
		{ID: 2, Title: "Orphan", Slug: "orphan", AuthorID: 8, Published: true, CreatedAt: now},
	}
	tagsByPostID := map[int64][]models.Tag{
		1: {{ID: 1, Name: "go"}},
	}
	authorByID := map[int64]*auth.User{
		7: {ID: 7, Name: "Jo", Username: "jo"},
	}

	envelopes := assemblePostEnvelopes(posts, tagsByPostID, authorByID)

	require.Len(t, envelopes, 2)
	assert.Equal(t, authorEnvelope{Name: "Jo", Username: "jo"}, envelopes[0].Author)
	assert.Equal(t, []string{"go"}, envelopes[0].TagList)

	assert.Equal(t, "orphan", envelopes[1].Slug, "a post whose author row is gone must still be listed")
	assert.Equal(t, authorEnvelope{}, envelopes[1].Author)
	assert.Empty(t, envelopes[1].TagList)
}
