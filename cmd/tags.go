package main

import (
	"net/http"
	"time"

	"github.com/inkwellcms/inkwell/internal/utils/functional"
	"github.com/inkwellcms/inkwell/models"
)

func (app *application) getTags(w http.ResponseWriter, r *http.Request) {
	// The public listing shows public tags only and counts published posts;
	// authenticated callers get the full catalog with drafts counted.
	publicOnly := !app.auth.IsUserAuthenticated(r)

	tagCounts, err := app.core.GetTagsWithPostCounts(r.Context(), publicOnly)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	type tagEnvelope struct {
		Name      string    `json:"name"`
		Slug      string    `json:"slug"`
		PostCount int64     `json:"postCount"`
		CreatedAt time.Time `json:"createdAt"`
	}

	tagEnvelopes := functional.Map(tagCounts, func(tc *models.TagWithPostCount) tagEnvelope {
		return tagEnvelope{
			Name:      tc.Tag.Name,
			Slug:      tc.Tag.Slug,
			PostCount: tc.PostCount,
			CreatedAt: tc.Tag.CreatedAt,
		}
	})

	if err := app.writeJSON(w, http.StatusOK, envelope{"tags": tagEnvelopes}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

// getTagCatalog returns the plain tag catalog, which the admin post editor
// uses as its autocomplete source.
func (app *application) getTagCatalog(w http.ResponseWriter, r *http.Request) {
	tags, err := app.core.GetTags(r.Context())
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	tagNames := functional.Map(tags, func(t *models.Tag) string { return t.Name })

	if err := app.writeJSON(w, http.StatusOK, envelope{"tags": tagNames}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
