// Package tagsync converges a post's tag associations to a desired set of
// tag names while keeping the global tag catalog consistent: missing tags are
// created, removed ones are unlinked, and tags left without any posts are
// deleted.
package tagsync

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/inkwellcms/inkwell/internal/core"
	"github.com/inkwellcms/inkwell/models"
)

// Store is the slice of the content repository the synchronizer needs. It is
// satisfied by *core.Core and injected at construction.
type Store interface {
	GetTagsForPost(ctx context.Context, postID int64) ([]*models.Tag, error)
	GetTagByName(ctx context.Context, name string) (*models.Tag, error)
	TagSlugExists(ctx context.Context, slug string) (bool, error)
	CreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	LinkTag(ctx context.Context, postID, tagID int64) error
	UnlinkTag(ctx context.Context, postID, tagID int64) error
	DeleteTagIfOrphaned(ctx context.Context, tagID int64) (bool, error)
	Transactionally(ctx context.Context, fn func(txCtx context.Context) error) error
}

type Synchronizer struct {
	store Store
	log   *slog.Logger
}

func New(store Store, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store: store,
		log:   log,
	}
}

// Sync converges the post's tag links to the desired tag names. Names are
// matched against the catalog case-sensitively; unknown names become new
// tags. Tags dropped from the post that no other post uses are deleted from
// the catalog. The whole reconciliation runs in one transaction, and the
// post's tags are final once Sync returns.
//
// Sync is idempotent: re-running it with the same desired set converges to
// the same end state.
func (s *Synchronizer) Sync(ctx context.Context, post *models.Post, desiredNames []string) error {
	return s.store.Transactionally(ctx, func(txCtx context.Context) error {
		return s.sync(txCtx, post, normalizeNames(desiredNames))
	})
}

func (s *Synchronizer) sync(ctx context.Context, post *models.Post, desiredNames []string) error {
	currentTags, err := s.store.GetTagsForPost(ctx, post.ID)
	if err != nil {
		return err
	}

	desired := make(map[string]bool, len(desiredNames))
	for _, name := range desiredNames {
		desired[name] = true
	}

	currentByName := make(map[string]*models.Tag, len(currentTags))
	for _, tag := range currentTags {
		currentByName[tag.Name] = tag
	}

	// Unlink dropped tags and garbage-collect the ones left orphaned. The
	// orphan check runs per tag: a tag still linked to another post stays.
	for _, tag := range currentTags {
		if desired[tag.Name] {
			continue
		}

		if err := s.store.UnlinkTag(ctx, post.ID, tag.ID); err != nil {
			return err
		}

		deleted, err := s.store.DeleteTagIfOrphaned(ctx, tag.ID)
		if err != nil {
			return err
		}
		if deleted {
			s.log.Debug("removed orphaned tag", "tag", tag.Name)
		}
	}

	// Link the names the post does not carry yet, reusing catalog tags where
	// they exist and creating the rest.
	for _, name := range desiredNames {
		if _, linked := currentByName[name]; linked {
			continue
		}

		tag, err := s.resolveTag(ctx, name)
		if err != nil {
			return err
		}

		if err := s.store.LinkTag(ctx, post.ID, tag.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Synchronizer) resolveTag(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.store.GetTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, core.NoRecordFound) {
		return nil, err
	}

	if core.GenerateSlug(name) == "" {
		return nil, xerrors.Newf("tag name %q has no sluggable characters", name)
	}

	slug, err := core.GenerateUniqueSlug(ctx, name, s.store.TagSlugExists)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateTag(ctx, &models.Tag{
		Name:       name,
		Slug:       slug,
		Visibility: models.VisibilityPublic,
	})
	if err != nil {
		return nil, err
	}
	if created.ID == 0 {
		// Programming error in the store, not a recoverable condition.
		return nil, xerrors.Newf("tag %q has no ID after save", name)
	}

	return created, nil
}

// normalizeNames trims the names, drops blanks, and deduplicates while
// preserving the caller's order.
func normalizeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}

	return result
}
