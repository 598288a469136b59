package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/inkwellcms/inkwell/internal/filter"
	"github.com/inkwellcms/inkwell/internal/utils/databaseutils"
	"github.com/inkwellcms/inkwell/models"
)

var ErrDuplicateSlug = xerrors.Message("Duplicate slug")

const postColumns = `p.id, p.title, p.content, p.excerpt, p.image_url, p.slug, p.author_id, p.published, p.created_at, p.updated_at`

const postOrder = `ORDER BY p.created_at DESC, p.id DESC`

// Each list query shares its WHERE fragment with the matching count query, so
// the two cannot drift apart.
const (
	publishedOnly = `p.published = TRUE`

	postsByTagFrom = `
		FROM posts p
		JOIN posts_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.slug = $1 AND p.published = TRUE`

	postsBySearchFrom = `
		FROM posts p
		WHERE p.title ILIKE '%' || $1 || '%' AND p.published = TRUE`
)

func draftClause(includeDrafts bool) string {
	if includeDrafts {
		return `TRUE`
	}
	return publishedOnly
}

func listPostsSQL(includeDrafts bool) string {
	return fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE %s
		%s
		LIMIT $1 OFFSET $2
	`, postColumns, draftClause(includeDrafts), postOrder)
}

func countPostsSQL(includeDrafts bool) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM posts p WHERE %s`, draftClause(includeDrafts))
}

func listPostsByAuthorSQL(includeDrafts bool) string {
	return fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.author_id = $1 AND %s
		%s
		LIMIT $2 OFFSET $3
	`, postColumns, draftClause(includeDrafts), postOrder)
}

func countPostsByAuthorSQL(includeDrafts bool) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM posts p WHERE p.author_id = $1 AND %s`, draftClause(includeDrafts))
}

func listPostsByTagSQL() string {
	return fmt.Sprintf(`
		SELECT %s
		%s
		%s
		LIMIT $2 OFFSET $3
	`, postColumns, postsByTagFrom, postOrder)
}

func countPostsByTagSQL() string {
	return fmt.Sprintf(`SELECT COUNT(*) %s`, postsByTagFrom)
}

func searchPostsSQL() string {
	return fmt.Sprintf(`
		SELECT %s
		%s
		%s
		LIMIT $2 OFFSET $3
	`, postColumns, postsBySearchFrom, postOrder)
}

func countSearchResultsSQL() string {
	return fmt.Sprintf(`SELECT COUNT(*) %s`, postsBySearchFrom)
}

func scanPost(rows *sql.Rows) (*models.Post, error) {
	post := &models.Post{}
	if err := rows.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Excerpt,
		&post.ImageURL,
		&post.Slug,
		&post.AuthorID,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return post, nil
}

func scanCount(rows *sql.Rows) (int64, error) {
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

// GetPosts returns posts sorted newest-first. Drafts are excluded entirely
// unless includeDrafts is set.
func (c *Core) GetPosts(ctx context.Context, includeDrafts bool, f filter.Filter) ([]*models.Post, error) {
	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, listPostsSQL(includeDrafts), scanPost, f.Limit, f.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (c *Core) CountPosts(ctx context.Context, includeDrafts bool) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, countPostsSQL(includeDrafts), scanCount)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

func (c *Core) GetPostsByAuthor(ctx context.Context, authorID int64, includeDrafts bool, f filter.Filter) ([]*models.Post, error) {
	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, listPostsByAuthorSQL(includeDrafts), scanPost, authorID, f.Limit, f.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (c *Core) CountPostsByAuthor(ctx context.Context, authorID int64, includeDrafts bool) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, countPostsByAuthorSQL(includeDrafts), scanCount, authorID)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

// GetPostsByTag returns published posts linked to the tag with the given
// slug, newest-first. Tag-filtered views are public-facing, so drafts are
// always excluded.
func (c *Core) GetPostsByTag(ctx context.Context, tagSlug string, f filter.Filter) ([]*models.Post, error) {
	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, listPostsByTagSQL(), scanPost, tagSlug, f.Limit, f.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (c *Core) CountPostsByTag(ctx context.Context, tagSlug string) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, countPostsByTagSQL(), scanCount, tagSlug)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

// SearchPosts matches the term as a case-insensitive substring of the post
// title. Content and excerpt are not searched. Drafts are excluded.
func (c *Core) SearchPosts(ctx context.Context, term string, f filter.Filter) ([]*models.Post, error) {
	posts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, searchPostsSQL(), scanPost, term, f.Limit, f.Offset)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return posts, nil
}

func (c *Core) CountSearchResults(ctx context.Context, term string) (int64, error) {
	count, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, countSearchResultsSQL(), scanCount, term)
	if err != nil {
		return 0, xerrors.New(err)
	}
	return count, nil
}

func (c *Core) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE p.slug = $1`, postColumns)

	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost, slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}
	return post, nil
}

func (c *Core) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts p WHERE p.id = $1`, postColumns)

	post, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanPost, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}
	return post, nil
}

// PostSlugExists reports whether any post other than excludingID holds the
// slug. Pass 0 for excludingID when creating a new post.
func (c *Core) PostSlugExists(ctx context.Context, slug string, excludingID int64) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM posts WHERE slug = $1 AND id <> $2
		)
	`

	exists, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (bool, error) {
		var exists bool
		if err := rows.Scan(&exists); err != nil {
			return false, xerrors.New(err)
		}
		return exists, nil
	}, slug, excludingID)
	if err != nil {
		return false, xerrors.New(err)
	}

	return exists, nil
}

// SavePost upserts the post: a post without an ID is inserted, otherwise the
// existing row is updated in place. Tag associations are not touched here.
func (c *Core) SavePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.ID == 0 {
		return c.insertPost(ctx, post)
	}
	return c.updatePost(ctx, post)
}

func (c *Core) insertPost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const insertSQL = `
		INSERT INTO posts (title, content, excerpt, image_url, slug, author_id, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, title, content, excerpt, image_url, slug, author_id, published, created_at, updated_at
	`

	createdAt := post.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	args := []any{post.Title, post.Content, post.Excerpt, post.ImageURL, post.Slug, post.AuthorID, post.Published, createdAt, post.UpdatedAt}
	saved, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanPost, args...)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateSlug)
		default:
			return nil, xerrors.New(err)
		}
	}

	return saved, nil
}

func (c *Core) updatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	const updateSQL = `
		UPDATE posts
		SET title = $1, content = $2, excerpt = $3, image_url = $4, slug = $5, published = $6, created_at = $7, updated_at = $8
		WHERE id = $9
		RETURNING id, title, content, excerpt, image_url, slug, author_id, published, created_at, updated_at
	`

	args := []any{post.Title, post.Content, post.Excerpt, post.ImageURL, post.Slug, post.Published, post.CreatedAt, post.UpdatedAt, post.ID}
	saved, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, updateSQL, scanPost, args...)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateSlug)
		default:
			return nil, xerrors.New(err)
		}
	}

	return saved, nil
}

// DeletePost removes the post and all of its tag associations in one
// transaction. Tags left without any posts are deleted from the catalog.
func (c *Core) DeletePost(ctx context.Context, post *models.Post) error {
	return c.Transactionally(ctx, func(txCtx context.Context) error {
		tags, err := c.GetTagsForPost(txCtx, post.ID)
		if err != nil {
			return err
		}

		for _, tag := range tags {
			if err := c.UnlinkTag(txCtx, post.ID, tag.ID); err != nil {
				return err
			}
			if _, err := c.DeleteTagIfOrphaned(txCtx, tag.ID); err != nil {
				return err
			}
		}

		affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, txCtx, `DELETE FROM posts WHERE id = $1`, post.ID)
		if err != nil {
			return xerrors.New(err)
		}
		if affected == 0 {
			return xerrors.New(NoRecordFound)
		}

		c.log.Info("post deleted", "post_id", post.ID, "slug", post.Slug)
		return nil
	})
}
