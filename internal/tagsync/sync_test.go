package tagsync

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellcms/inkwell/internal/core"
	"github.com/inkwellcms/inkwell/models"
)

// fakeStore is an in-memory Store so the reconciliation logic can be tested
// without a database.
type fakeStore struct {
	nextTagID int64
	tags      map[int64]*models.Tag
	links     map[int64]map[int64]bool // postID -> set of tagIDs
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tags:  make(map[int64]*models.Tag),
		links: make(map[int64]map[int64]bool),
	}
}

func (f *fakeStore) GetTagsForPost(ctx context.Context, postID int64) ([]*models.Tag, error) {
	var tags []*models.Tag
	for tagID := range f.links[postID] {
		tags = append(tags, f.tags[tagID])
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (f *fakeStore) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	for _, tag := range f.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	return nil, core.NoRecordFound
}

func (f *fakeStore) TagSlugExists(ctx context.Context, slug string) (bool, error) {
	for _, tag := range f.tags {
		if tag.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTag(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	f.nextTagID++
	created := &models.Tag{
		ID:         f.nextTagID,
		Name:       tag.Name,
		Slug:       tag.Slug,
		Visibility: tag.Visibility,
	}
	f.tags[created.ID] = created
	return created, nil
}

func (f *fakeStore) LinkTag(ctx context.Context, postID, tagID int64) error {
	if f.links[postID] == nil {
		f.links[postID] = make(map[int64]bool)
	}
	f.links[postID][tagID] = true
	return nil
}

func (f *fakeStore) UnlinkTag(ctx context.Context, postID, tagID int64) error {
	delete(f.links[postID], tagID)
	return nil
}

func (f *fakeStore) DeleteTagIfOrphaned(ctx context.Context, tagID int64) (bool, error) {
	for _, tagIDs := range f.links {
		if tagIDs[tagID] {
			return false, nil
		}
	}
	if _, exists := f.tags[tagID]; !exists {
		return false, nil
	}
	delete(f.tags, tagID)
	return true, nil
}

func (f *fakeStore) Transactionally(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) catalogNames() []string {
	names := make([]string, 0, len(f.tags))
	for _, tag := range f.tags {
		names = append(names, tag.Name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeStore) linkedNames(postID int64) []string {
	var names []string
	for tagID := range f.links[postID] {
		names = append(names, f.tags[tagID].Name)
	}
	sort.Strings(names)
	return names
}

func newTestSynchronizer(store Store) *Synchronizer {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSyncLinksNewTags(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}

	err := sync.Sync(context.Background(), post, []string{"swift", "vapor"})
	require.NoError(t, err)

	assert.Equal(t, []string{"swift", "vapor"}, store.linkedNames(post.ID))
	assert.Equal(t, []string{"swift", "vapor"}, store.catalogNames())

	tag, err := store.GetTagByName(context.Background(), "swift")
	require.NoError(t, err)
	assert.Equal(t, "swift", tag.Slug)
	assert.Equal(t, models.VisibilityPublic, tag.Visibility)
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}
	names := []string{"go", "postgres"}

	require.NoError(t, sync.Sync(context.Background(), post, names))
	afterFirst := store.linkedNames(post.ID)
	catalogAfterFirst := store.catalogNames()

	require.NoError(t, sync.Sync(context.Background(), post, names))

	assert.Equal(t, afterFirst, store.linkedNames(post.ID))
	assert.Equal(t, catalogAfterFirst, store.catalogNames())
	assert.Len(t, store.links[post.ID], 2)
}

func TestSyncRemovesOrphanedTag(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}

	require.NoError(t, sync.Sync(context.Background(), post, []string{"lonely"}))
	require.Equal(t, []string{"lonely"}, store.catalogNames())

	require.NoError(t, sync.Sync(context.Background(), post, nil))

	assert.Empty(t, store.linkedNames(post.ID))
	assert.Empty(t, store.catalogNames(), "a tag with no posts left must be deleted")
}

func TestSyncKeepsTagUsedElsewhere(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	postA := &models.Post{ID: 1}
	postB := &models.Post{ID: 2}

	require.NoError(t, sync.Sync(context.Background(), postA, []string{"shared"}))
	require.NoError(t, sync.Sync(context.Background(), postB, []string{"shared"}))

	require.NoError(t, sync.Sync(context.Background(), postA, nil))

	assert.Empty(t, store.linkedNames(postA.ID))
	assert.Equal(t, []string{"shared"}, store.linkedNames(postB.ID))
	assert.Equal(t, []string{"shared"}, store.catalogNames())
}

func TestSyncEditConvergesTagSet(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}

	require.NoError(t, sync.Sync(context.Background(), post, []string{"swift", "vapor"}))
	require.NoError(t, sync.Sync(context.Background(), post, []string{"vapor", "server-side-swift"}))

	assert.Equal(t, []string{"server-side-swift", "vapor"}, store.linkedNames(post.ID))
	assert.Equal(t, []string{"server-side-swift", "vapor"}, store.catalogNames(), "swift must be gone, server-side-swift newly present")
}

func TestSyncReusesExistingTagExactMatch(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)

	existing, err := store.CreateTag(context.Background(), &models.Tag{Name: "Go", Slug: "go", Visibility: models.VisibilityPublic})
	require.NoError(t, err)

	post := &models.Post{ID: 1}
	require.NoError(t, sync.Sync(context.Background(), post, []string{"Go"}))

	assert.Equal(t, []string{"Go"}, store.catalogNames(), "exact-name match must reuse the catalog tag")
	assert.True(t, store.links[post.ID][existing.ID])

	// Names match case-sensitively: a differently-cased name is a new tag.
	other := &models.Post{ID: 2}
	require.NoError(t, sync.Sync(context.Background(), other, []string{"go"}))
	assert.Equal(t, []string{"Go", "go"}, store.catalogNames())
}

func TestSyncRejectsUnsluggableTagName(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}

	err := sync.Sync(context.Background(), post, []string{"!!!"})
	require.Error(t, err)

	assert.Empty(t, store.catalogNames(), "a name with no sluggable characters must not create a tag")
	assert.Empty(t, store.linkedNames(post.ID))
}

func TestSyncNormalizesDesiredNames(t *testing.T) {
	store := newFakeStore()
	sync := newTestSynchronizer(store)
	post := &models.Post{ID: 1}

	require.NoError(t, sync.Sync(context.Background(), post, []string{" go ", "go", "", "   "}))

	assert.Equal(t, []string{"go"}, store.catalogNames())
	assert.Len(t, store.links[post.ID], 1)
}
