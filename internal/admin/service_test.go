// ABOUTME: Tests for post orchestration against a fake gateway.
// ABOUTME: Covers load precedence, provisional ids, save/update, delete and filter flows.
package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/postadmin/internal/models"
	"github.com/2389-research/postadmin/internal/store"
)

// fakeGateway serves a fixed list and echoes creates with a server id.
type fakeGateway struct {
	posts     []models.Post
	listErr   error
	createErr error
	nextID    int
	listCalls int
	created   []models.Post
}

func (f *fakeGateway) List(ctx context.Context) ([]models.Post, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeGateway) Create(ctx context.Context, draft models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, draft)
	out := draft
	if out.ID == 0 {
		out.ID = f.nextID
	}
	return &out, nil
}

func seedPosts() []models.Post {
	return []models.Post{
		{ID: 1, Title: "A", Body: "x", UserID: 1},
		{ID: 2, Title: "B", Body: "y", UserID: 1},
	}
}

func newTestService(t *testing.T, gw *fakeGateway) *Service {
	t.Helper()
	svc, err := NewService(gw, store.New())
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, store.New())
	assert.Error(t, err)

	_, err = NewService(&fakeGateway{}, nil)
	assert.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)

	require.NoError(t, svc.LoadAll(context.Background()))
	assert.Equal(t, seedPosts(), svc.Store().State().Items)
}

func TestLoadAllFailureKeepsItems(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	gw.listErr = errors.New("connection refused")
	err := svc.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, gw.listErr)

	assert.Equal(t, seedPosts(), svc.Store().State().Items)
	n, ok := svc.Notice()
	require.True(t, ok)
	assert.Equal(t, store.NoticeError, n.Kind)
	assert.Equal(t, "Load failed", n.Title)
}

func TestFilterThenResetRestoresList(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	svc.ApplyFilter("A")
	assert.Equal(t, []models.Post{seedPosts()[0]}, svc.Store().State().Items)
	assert.Equal(t, "A", svc.Store().Filter().SearchText)

	require.NoError(t, svc.ResetFilter(context.Background()))
	assert.Empty(t, svc.Store().Filter().SearchText)
	assert.Equal(t, seedPosts(), svc.Store().State().Items)
}

func TestLoadAllPrefersSnapshot(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))
	svc.ApplyFilter("B")

	gw.posts = []models.Post{{ID: 9, Title: "fresh", Body: "f", UserID: 1}}
	require.NoError(t, svc.LoadAll(context.Background()))
	assert.Equal(t, seedPosts(), svc.Store().State().Items)
}

func TestReloadFreshDropsSnapshot(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))
	svc.ApplyFilter("B")

	fresh := []models.Post{{ID: 9, Title: "fresh", Body: "f", UserID: 1}}
	gw.posts = fresh
	require.NoError(t, svc.ReloadFresh(context.Background()))

	state := svc.Store().State()
	assert.Equal(t, fresh, state.Items)
	assert.Empty(t, state.Snapshot)
	assert.Empty(t, svc.Store().Filter().SearchText)
}

func TestDeleteWhileFilteredSurvivesReset(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	svc.ApplyFilter("A")
	svc.SelectPost(seedPosts()[0])
	assert.True(t, svc.DeleteActive())

	require.NoError(t, svc.ResetFilter(context.Background()))
	assert.Equal(t, []models.Post{seedPosts()[1]}, svc.Store().State().Items)
}

func TestApplyBlankFilterIsIgnored(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	svc.ApplyFilter("   ")
	st := svc.Store().State()
	assert.False(t, st.Filtering())
	assert.Len(t, st.Items, 2)
}

func TestCreatePostProvisionalID(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts(), nextID: 3}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	post, err := svc.CreatePost(context.Background(), models.Post{Title: "New", Body: "b", UserID: 1})
	require.NoError(t, err)

	require.Len(t, gw.created, 1)
	assert.Equal(t, 3, gw.created[0].ID, "provisional id is sent to the backend")
	assert.Equal(t, 3, post.ID)

	st := svc.Store().State()
	assert.Len(t, st.Items, 3)
	assert.False(t, st.IsSaving)

	n, ok := svc.Notice()
	require.True(t, ok)
	assert.Contains(t, n.Message, "New")
}

func TestCreatePostAfterDeleteDoesNotCollide(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	svc.SelectPost(seedPosts()[0])
	svc.DeleteActive()

	for i := 0; i < 3; i++ {
		_, err := svc.CreatePost(context.Background(), models.NewDraft("Draft", "body"))
		require.NoError(t, err)
	}

	seen := map[int]bool{}
	for _, p := range svc.Store().State().Items {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
	assert.False(t, seen[1], "deleted id must not be reused")
}

func TestCreatePostEmptyListReloadsFirst(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)

	post, err := svc.CreatePost(context.Background(), models.NewDraft("New", "b"))
	require.NoError(t, err)
	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, 3, post.ID)
	assert.Len(t, svc.Store().State().Items, 3)
}

func TestCreatePostUsesServerIDWhenListEmpty(t *testing.T) {
	gw := &fakeGateway{nextID: 101}
	svc := newTestService(t, gw)

	post, err := svc.CreatePost(context.Background(), models.NewDraft("First", "post"))
	require.NoError(t, err)
	assert.Equal(t, 101, post.ID)
	assert.Equal(t, 0, gw.created[0].ID)
}

func TestCreatePostBackendFailure(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts(), createErr: errors.New("503")}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	_, err := svc.CreatePost(context.Background(), models.NewDraft("New", "b"))
	require.Error(t, err)

	st := svc.Store().State()
	assert.Equal(t, seedPosts(), st.Items)
	assert.False(t, st.IsSaving)
	assert.Equal(t, store.NoticeError, st.Notice.Kind)
}

func TestCreatePostValidation(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)

	_, err := svc.CreatePost(context.Background(), models.NewDraft("", "b"))
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "title")
	assert.Contains(t, verrs, "body")
	assert.Empty(t, gw.created)
	assert.False(t, svc.Store().State().IsSaving)
}

func TestSaveOrUpdateExisting(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	_, err := svc.SaveOrUpdate(models.Post{ID: 2, Title: "B2", Body: "y", UserID: 1})
	require.NoError(t, err)

	items := svc.Store().State().Items
	require.Len(t, items, 2)
	assert.Equal(t, seedPosts()[0], items[0])
	assert.Equal(t, "B2", items[1].Title)
}

func TestSaveOrUpdateNewPost(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	post, err := svc.SaveOrUpdate(models.Post{Title: "Local", Body: "only"})
	require.NoError(t, err)
	assert.Equal(t, 3, post.ID)
	assert.Equal(t, models.DefaultUserID, post.UserID)
	assert.Len(t, svc.Store().State().Items, 3)
	assert.Empty(t, gw.created, "save path does not call the backend")
}

func TestSaveOrUpdateDraftsGetDistinctIDs(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	first, err := svc.SaveOrUpdate(models.Post{Title: "One", Body: "local"})
	require.NoError(t, err)
	second, err := svc.SaveOrUpdate(models.Post{Title: "Two", Body: "local"})
	require.NoError(t, err)
	assert.Equal(t, 3, first.ID)
	assert.Equal(t, 4, second.ID)

	svc.SelectPost(first)
	require.True(t, svc.DeleteActive())

	items := svc.Store().State().Items
	assert.Len(t, items, 3, "delete removes exactly one post")
	_, found := svc.Store().State().Find(second.ID)
	assert.True(t, found)
}

func TestCreatePostWithEmptyFilterKeepsView(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))
	svc.ApplyFilter("zzz")
	require.Empty(t, svc.Store().State().Items)

	post, err := svc.CreatePost(context.Background(), models.NewDraft("New", "b"))
	require.NoError(t, err)

	state := svc.Store().State()
	assert.Equal(t, 1, gw.listCalls, "no reload while a filter snapshot is held")
	assert.Equal(t, 3, post.ID)
	assert.Equal(t, "zzz", svc.Store().Filter().SearchText)
	assert.Equal(t, []models.Post{post}, state.Items)
	assert.Len(t, state.Snapshot, 3)
}

func TestDeleteActiveWithoutSelection(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	assert.False(t, svc.DeleteActive())
	assert.Equal(t, seedPosts(), svc.Store().State().Items)
}

func TestDeleteActive(t *testing.T) {
	gw := &fakeGateway{posts: seedPosts()}
	svc := newTestService(t, gw)
	require.NoError(t, svc.LoadAll(context.Background()))

	svc.SelectPost(seedPosts()[1])
	assert.True(t, svc.DeleteActive())
	assert.Equal(t, []models.Post{seedPosts()[0]}, svc.Store().State().Items)
	assert.Nil(t, svc.Store().State().Active)

	// active is cleared, so a second call is a no-op
	assert.False(t, svc.DeleteActive())
}
