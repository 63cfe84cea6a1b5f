package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwire/feedwire/internal/model"
	"github.com/feedwire/feedwire/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsnName := strings.NewReplacer("/", "_").Replace(t.Name())
	st, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createTestUser(t *testing.T, st *Store, email string) model.User {
	t.Helper()
	ctx := context.Background()
	user := model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	id, err := st.CreateUser(ctx, &user)
	require.NoError(t, err)
	user.ID = id
	return user
}

func createTestPost(t *testing.T, st *Store, creator int64, title string) model.Post {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	post := model.Post{
		Title:     title,
		Content:   "some content",
		ImageURL:  "images/x.png",
		Creator:   creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := st.CreatePost(ctx, &post)
	require.NoError(t, err)
	post.ID = id
	return post
}

func TestUserLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "ada@example.com")

	got, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []int64{}, got.Posts)

	byEmail, err := st.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = st.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, st, "ada@example.com")

	dup := model.User{Name: "Other", Email: "ada@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	_, err := st.CreateUser(ctx, &dup)
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestUpdateUserPosts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "ada@example.com")

	require.NoError(t, st.UpdateUserPosts(ctx, user.ID, []int64{3, 1, 7}))
	got, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 7}, got.Posts)

	// nil resets to an empty list, not null.
	require.NoError(t, st.UpdateUserPosts(ctx, user.ID, nil))
	got, err = st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{}, got.Posts)

	assert.ErrorIs(t, st.UpdateUserPosts(ctx, 9999, []int64{1}), store.ErrNotFound)
}

func TestPostLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "ada@example.com")
	post := createTestPost(t, st, user.ID, "A fine title")

	got, err := st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A fine title", got.Title)
	assert.Equal(t, "images/x.png", got.ImageURL)
	assert.Equal(t, user.ID, got.Creator)

	got.Title = "Edited title"
	got.Content = "edited content"
	got.UpdatedAt = time.Now()
	require.NoError(t, st.UpdatePost(ctx, &got))

	got, err = st.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited title", got.Title)
	assert.Equal(t, "edited content", got.Content)

	_, err = st.GetPost(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.UpdatePost(ctx, &model.Post{ID: 9999}), store.ErrNotFound)
}

func TestListPostsPagination(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "ada@example.com")
	for i := 1; i <= 5; i++ {
		createTestPost(t, st, user.ID, fmt.Sprintf("Post number %d", i))
	}

	page1, err := st.ListPosts(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "Post number 1", page1[0].Title)
	assert.Equal(t, "Post number 2", page1[1].Title)

	page3, err := st.ListPosts(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "Post number 5", page3[0].Title)

	// Past the end is empty, not an error.
	page4, err := st.ListPosts(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestDeletePost(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st, "ada@example.com")
	post := createTestPost(t, st, user.ID, "Doomed post")

	snapshot, err := st.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed post", snapshot.Title)

	_, err = st.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.DeletePost(ctx, post.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSchemaVersionRecorded(t *testing.T) {
	st := newTestStore(t)

	var version int
	row := st.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	require.NoError(t, row.Scan(&version))
	assert.Equal(t, len(migrations), version)
}
