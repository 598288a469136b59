package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/inkwellcms/inkwell/internal/utils/collectionutils"
	"github.com/inkwellcms/inkwell/internal/utils/databaseutils"
	"github.com/inkwellcms/inkwell/internal/utils/stringutils"
	"github.com/inkwellcms/inkwell/models"
)

var ErrDuplicateTagName = xerrors.Message("Duplicate tag name")

const tagColumns = `t.id, t.name, t.slug, t.visibility, t.created_at`

func scanTag(rows *sql.Rows) (*models.Tag, error) {
	tag := &models.Tag{}
	if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Visibility, &tag.CreatedAt); err != nil {
		return nil, xerrors.New(err)
	}
	return tag, nil
}

func (c *Core) GetTags(ctx context.Context) ([]*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM tags t ORDER BY t.name`, tagColumns)

	tags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanTag)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return tags, nil
}

// GetTagsWithPostCounts returns the catalog with per-tag post counts, ordered
// by name. With publicOnly set, private tags are dropped and only published
// posts count — the shape the public tag listing wants. Without it, every
// tag and every post counts.
func (c *Core) GetTagsWithPostCounts(ctx context.Context, publicOnly bool) ([]*models.TagWithPostCount, error) {
	postJoin := `LEFT JOIN posts p ON p.id = pt.post_id`
	visibilityClause := `TRUE`
	if publicOnly {
		postJoin = `LEFT JOIN posts p ON p.id = pt.post_id AND p.published = TRUE`
		visibilityClause = `t.visibility = 'public'`
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(p.id) AS post_count
		FROM tags t
		LEFT JOIN posts_tags pt ON pt.tag_id = t.id
		%s
		WHERE %s
		GROUP BY %s
		ORDER BY t.name
	`, tagColumns, postJoin, visibilityClause, tagColumns)

	tagCounts, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*models.TagWithPostCount, error) {
		tagCount := &models.TagWithPostCount{}
		if err := rows.Scan(
			&tagCount.Tag.ID,
			&tagCount.Tag.Name,
			&tagCount.Tag.Slug,
			&tagCount.Tag.Visibility,
			&tagCount.Tag.CreatedAt,
			&tagCount.PostCount,
		); err != nil {
			return nil, xerrors.New(err)
		}
		return tagCount, nil
	})
	if err != nil {
		return nil, xerrors.New(err)
	}

	return tagCounts, nil
}

func (c *Core) GetTagsForPost(ctx context.Context, postID int64) ([]*models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tags t
		JOIN posts_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, tagColumns)

	tags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanTag, postID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return tags, nil
}

// GetTagsByPostIds fetches the tags of many posts at once and groups them by
// post ID, so list views do not issue one query per post.
func (c *Core) GetTagsByPostIds(ctx context.Context, postIDs []int64) (map[int64][]models.Tag, error) {
	if len(postIDs) == 0 {
		return map[int64][]models.Tag{}, nil
	}

	type postTag struct {
		postID int64
		tag    models.Tag
	}

	placeholders, args := stringutils.INClause(postIDs)
	query := fmt.Sprintf(`
		SELECT pt.post_id, %s
		FROM tags t
		JOIN posts_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id IN (%s)
		ORDER BY t.name
	`, tagColumns, strings.Join(placeholders, ", "))

	postTags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (postTag, error) {
		var pt postTag
		if err := rows.Scan(&pt.postID, &pt.tag.ID, &pt.tag.Name, &pt.tag.Slug, &pt.tag.Visibility, &pt.tag.CreatedAt); err != nil {
			return postTag{}, xerrors.New(err)
		}
		return pt, nil
	}, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	grouped := collectionutils.GroupBy(postTags, func(pt postTag) int64 { return pt.postID })

	tagsByPostID := make(map[int64][]models.Tag, len(grouped))
	for postID, pts := range grouped {
		tags := make([]models.Tag, len(pts))
		for i, pt := range pts {
			tags[i] = pt.tag
		}
		tagsByPostID[postID] = tags
	}

	return tagsByPostID, nil
}

// GetTagByName looks a tag up by its exact, case-sensitive name.
func (c *Core) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM tags t WHERE t.name = $1`, tagColumns)

	tag, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanTag, name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}
	return tag, nil
}

func (c *Core) TagSlugExists(ctx context.Context, slug string) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM tags WHERE slug = $1
		)
	`

	exists, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (bool, error) {
		var exists bool
		if err := rows.Scan(&exists); err != nil {
			return false, xerrors.New(err)
		}
		return exists, nil
	}, slug)
	if err != nil {
		return false, xerrors.New(err)
	}

	return exists, nil
}

func (c *Core) CreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	const insertSQL = `
		INSERT INTO tags (name, slug, visibility, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, slug, visibility, created_at
	`

	visibility := tag.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	created, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, insertSQL, scanTag, tag.Name, tag.Slug, visibility, time.Now())
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `tags_name_key`):
			return nil, xerrors.New(ErrDuplicateTagName)
		case strings.Contains(err.Error(), `duplicate key value violates unique constraint`):
			return nil, xerrors.New(ErrDuplicateSlug)
		default:
			return nil, xerrors.New(err)
		}
	}

	return created, nil
}

func (c *Core) LinkTag(ctx context.Context, postID, tagID int64) error {
	const insertSQL = `
		INSERT INTO posts_tags (post_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, insertSQL, postID, tagID); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (c *Core) UnlinkTag(ctx context.Context, postID, tagID int64) error {
	const deleteSQL = `
		DELETE FROM posts_tags
		WHERE post_id = $1 AND tag_id = $2
	`

	if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, postID, tagID); err != nil {
		return xerrors.New(err)
	}
	return nil
}

// DeleteTagIfOrphaned deletes the tag when no post references it any more.
// The check and the delete run as one statement, so a tag still used by
// another post is never removed.
func (c *Core) DeleteTagIfOrphaned(ctx context.Context, tagID int64) (bool, error) {
	const deleteSQL = `
		DELETE FROM tags t
		WHERE t.id = $1
		  AND NOT EXISTS (SELECT 1 FROM posts_tags pt WHERE pt.tag_id = t.id)
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, deleteSQL, tagID)
	if err != nil {
		return false, xerrors.New(err)
	}

	return affected > 0, nil
}
