package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/core"
	"github.com/inkwellcms/inkwell/internal/filter"
	"github.com/inkwellcms/inkwell/internal/utils/collectionutils"
	"github.com/inkwellcms/inkwell/internal/utils/functional"
	"github.com/inkwellcms/inkwell/internal/validator"
	"github.com/inkwellcms/inkwell/models"
)

type postInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    *string  `json:"excerpt"`
	ImageURL   *string  `json:"image"`
	TagNames   []string `json:"tagNames"`
	IsDraft    bool     `json:"isDraft"`
	UpdateSlug bool     `json:"updateSlug"`
}

func (app *application) validatePostInput(v *validator.Validator, input *postInput) {
	v.CheckNotBlank(input.Title, "title", "must be provided")
	v.CheckNotBlank(input.Content, "content", "must be provided")
	v.Check(v.IsUnique(input.TagNames), "tagNames", "must not contain duplicate values")
}

func (app *application) createPost(w http.ResponseWriter, r *http.Request) {
	type CreatePostRequest struct {
		postInput `json:"post"`
	}

	var requestPayload CreatePostRequest

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	app.validatePostInput(v, &requestPayload.postInput)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	user, err := app.auth.GetAuthenticatedUser(r)
	if err != nil {
		app.authenticationRequiredResponse(w, r, err)
		return
	}

	slug, err := core.GenerateUniqueSlug(r.Context(), requestPayload.Title, func(ctx context.Context, candidate string) (bool, error) {
		return app.core.PostSlugExists(ctx, candidate, 0)
	})
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}
	if slug == "" {
		v.AddError("title", "must contain at least one letter or digit")
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	post := &models.Post{
		Title:     requestPayload.Title,
		Content:   requestPayload.Content,
		Excerpt:   requestPayload.Excerpt,
		ImageURL:  requestPayload.ImageURL,
		Slug:      slug,
		AuthorID:  user.ID,
		Published: !requestPayload.IsDraft,
	}

	saved, err := app.core.SavePost(r.Context(), post)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateSlug):
			v.AddError("slug", "Slug already exists")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors, ErrorStack: err})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.tagSync.Sync(r.Context(), saved, requestPayload.TagNames); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.writePostResponse(w, r, http.StatusCreated, saved, user)
}

func (app *application) updatePost(w http.ResponseWriter, r *http.Request) {
	type UpdatePostRequest struct {
		postInput `json:"post"`
	}

	params := httprouter.ParamsFromContext(r.Context())
	post, err := app.core.GetPostBySlug(r.Context(), params.ByName("slug"))
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	var requestPayload UpdatePostRequest

	if err := app.readJSON(w, r, &requestPayload); err != nil {
		app.badRequestResponse(w, r, &AppError{
			ErrorMessage: err.Error(),
			ErrorStack:   err,
		})
		return
	}

	v := validator.New()
	app.validatePostInput(v, &requestPayload.postInput)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	// The edit-timestamp rule depends on the state the post was in when the
	// edit arrived, so Touch runs before the new publish flag is applied.
	post.Touch(time.Now())

	post.Title = requestPayload.Title
	post.Content = requestPayload.Content
	post.Excerpt = requestPayload.Excerpt
	post.ImageURL = requestPayload.ImageURL
	post.Published = !requestPayload.IsDraft

	if requestPayload.UpdateSlug {
		slug, err := core.GenerateUniqueSlug(r.Context(), requestPayload.Title, func(ctx context.Context, candidate string) (bool, error) {
			return app.core.PostSlugExists(ctx, candidate, post.ID)
		})
		if err != nil {
			app.internalErrorResponse(w, r, err)
			return
		}
		if slug == "" {
			v.AddError("title", "must contain at least one letter or digit")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
			return
		}
		post.Slug = slug
	}

	saved, err := app.core.SavePost(r.Context(), post)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateSlug):
			v.AddError("slug", "Slug already exists")
			app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors, ErrorStack: err})
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.tagSync.Sync(r.Context(), saved, requestPayload.TagNames); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	author, err := app.core.GetUserByID(r.Context(), saved.AuthorID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.writePostResponse(w, r, http.StatusOK, saved, author)
}

func (app *application) deletePost(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	post, err := app.core.GetPostBySlug(r.Context(), params.ByName("slug"))
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	if err := app.core.DeletePost(r.Context(), post); err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

func (app *application) getPost(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	post, err := app.core.GetPostBySlug(r.Context(), params.ByName("slug"))
	if err != nil {
		switch {
		case errors.Is(err, core.NoRecordFound):
			app.notFoundResponse(w, r)
			return
		default:
			app.internalErrorResponse(w, r, err)
			return
		}
	}

	// Drafts are only visible to authenticated users.
	if !post.Published && !app.auth.IsUserAuthenticated(r) {
		app.notFoundResponse(w, r)
		return
	}

	author, err := app.core.GetUserByID(r.Context(), post.AuthorID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.writePostResponse(w, r, http.StatusOK, post, author)
}

func (app *application) getPosts(w http.ResponseWriter, r *http.Request) {
	app.listPosts(w, r, false)
}

func (app *application) getAllPosts(w http.ResponseWriter, r *http.Request) {
	app.listPosts(w, r, true)
}

func (app *application) listPosts(w http.ResponseWriter, r *http.Request, includeDrafts bool) {
	v := validator.New()
	query := r.URL.Query()
	tagQ := app.readString(query, "tag", "")
	authorQ := app.readString(query, "author", "")
	searchQ := app.readString(query, "q", "")
	page := app.readInt(query, "page", 1, v)

	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	ctx := r.Context()

	var total int64
	var err error
	var list func(f filter.Filter) ([]*models.Post, error)

	switch {
	case tagQ != "":
		// Tag-filtered views are public-facing only, so drafts never appear
		// here regardless of the caller.
		total, err = app.core.CountPostsByTag(ctx, tagQ)
		list = func(f filter.Filter) ([]*models.Post, error) {
			return app.core.GetPostsByTag(ctx, tagQ, f)
		}
	case authorQ != "":
		user, userErr := app.core.GetUserByUsername(ctx, authorQ)
		if userErr != nil {
			if errors.Is(userErr, core.NoRecordFound) {
				app.notFoundResponse(w, r)
				return
			}
			app.internalErrorResponse(w, r, userErr)
			return
		}
		total, err = app.core.CountPostsByAuthor(ctx, user.ID, includeDrafts)
		list = func(f filter.Filter) ([]*models.Post, error) {
			return app.core.GetPostsByAuthor(ctx, user.ID, includeDrafts, f)
		}
	case searchQ != "":
		total, err = app.core.CountSearchResults(ctx, searchQ)
		list = func(f filter.Filter) ([]*models.Post, error) {
			return app.core.SearchPosts(ctx, searchQ, f)
		}
	default:
		total, err = app.core.CountPosts(ctx, includeDrafts)
		list = func(f filter.Filter) ([]*models.Post, error) {
			return app.core.GetPosts(ctx, includeDrafts, f)
		}
	}
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	app.listPostsPage(w, r, total, page, list)
}

func (app *application) listPostsPage(w http.ResponseWriter, r *http.Request, total, page int64, list func(f filter.Filter) ([]*models.Post, error)) {
	v := validator.New()
	pagination := filter.Paginate(page, app.config.PostsPerPage, total)
	f := pagination.Filter(app.config.PostsPerPage)

	filter.ValidateFilters(f, v)
	if !v.IsValid() {
		app.badRequestResponse(w, r, &AppError{ErrorDetails: v.Errors})
		return
	}

	posts, err := list(f)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	response, err := app.preparePostListResponse(r.Context(), posts, pagination, total)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	if err := app.writeJSON(w, http.StatusOK, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}

type authorEnvelope struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type postEnvelope struct {
	Slug      string         `json:"slug"`
	Title     string         `json:"title"`
	Content   string         `json:"content,omitempty"`
	Excerpt   *string        `json:"excerpt,omitempty"`
	Image     *string        `json:"image,omitempty"`
	TagList   []string       `json:"tagList"`
	Published bool           `json:"published"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
	Author    authorEnvelope `json:"author"`
}

func (app *application) preparePostListResponse(ctx context.Context, posts []*models.Post, pagination filter.Pagination, total int64) (envelope, error) {
	postIDs := functional.Map(posts, func(p *models.Post) int64 {
		return p.ID
	})

	tagsByPostID, err := app.core.GetTagsByPostIds(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	authorIDs := functional.Map(posts, func(p *models.Post) int64 {
		return p.AuthorID
	})

	authors, err := app.core.GetUsersByIdList(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	authorByID := collectionutils.Associate(authors, func(user *auth.User) (int64, *auth.User) {
		return user.ID, user
	})

	return envelope{
		"posts":      assemblePostEnvelopes(posts, tagsByPostID, authorByID),
		"pagination": pagination,
		"totalPosts": total,
	}, nil
}

func assemblePostEnvelopes(posts []*models.Post, tagsByPostID map[int64][]models.Tag, authorByID map[int64]*auth.User) []postEnvelope {
	postEnvelopes := make([]postEnvelope, 0, len(posts))
	for _, post := range posts {
		tags := collectionutils.GetOrDefault(tagsByPostID, post.ID, []models.Tag{})
		tagNames := functional.Map(tags, func(t models.Tag) string { return t.Name })

		item := postEnvelope{
			Slug:      post.Slug,
			Title:     post.Title,
			Excerpt:   post.Excerpt,
			Image:     post.ImageURL,
			TagList:   tagNames,
			Published: post.Published,
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}

		// A post can outlive its author row; render it without author details.
		if author, ok := authorByID[post.AuthorID]; ok && author != nil {
			item.Author = authorEnvelope{
				Name:     author.Name,
				Username: author.Username,
			}
		}

		postEnvelopes = append(postEnvelopes, item)
	}

	return postEnvelopes
}

func (app *application) writePostResponse(w http.ResponseWriter, r *http.Request, status int, post *models.Post, author *auth.User) {
	tags, err := app.core.GetTagsForPost(r.Context(), post.ID)
	if err != nil {
		app.internalErrorResponse(w, r, err)
		return
	}

	tagNames := functional.Map(tags, func(t *models.Tag) string { return t.Name })

	response := envelope{
		"post": postEnvelope{
			Slug:      post.Slug,
			Title:     post.Title,
			Content:   post.Content,
			Excerpt:   post.Excerpt,
			Image:     post.ImageURL,
			TagList:   tagNames,
			Published: post.Published,
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
			Author: authorEnvelope{
				Name:     author.Name,
				Username: author.Username,
			},
		},
	}

	if err := app.writeJSON(w, status, response, nil); err != nil {
		app.internalErrorResponse(w, r, err)
	}
}
