package memdb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

func seedUser(t *testing.T, d *DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, d.CreateUser(context.Background(), u))
	return u
}

func TestUserConstraints(t *testing.T) {
	d := New()
	ctx := context.Background()
	seedUser(t, d, "alice")

	err := d.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "users_username_key", dup.Constraint)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	err = d.CreateUser(ctx, &models.User{Username: "bob", Email: "alice@example.com"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "users_email_key", dup.Constraint)

	_, err = d.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNoRecord)
}

func TestFollowConstraints(t *testing.T) {
	d := New()
	ctx := context.Background()
	a := seedUser(t, d, "alice")
	b := seedUser(t, d, "bob")

	err := d.CreateFollow(ctx, &models.Follow{UserID: a.ID, FollowingID: a.ID})
	assert.ErrorIs(t, err, apperr.ErrSelfReference)

	f := &models.Follow{UserID: a.ID, FollowingID: b.ID}
	require.NoError(t, d.CreateFollow(ctx, f))
	assert.Equal(t, "alice", f.User)
	assert.Equal(t, "bob", f.Following)

	err = d.CreateFollow(ctx, &models.Follow{UserID: a.ID, FollowingID: b.ID})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	ok, err := d.FollowExists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.FollowExists(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentDuplicateFollow(t *testing.T) {
	d := New()
	a := seedUser(t, d, "alice")
	b := seedUser(t, d, "bob")

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.CreateFollow(context.Background(), &models.Follow{UserID: a.ID, FollowingID: b.ID}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}

func TestListFollowsSearch(t *testing.T) {
	d := New()
	ctx := context.Background()
	a := seedUser(t, d, "alice")
	b := seedUser(t, d, "Bobby")
	c := seedUser(t, d, "carol")
	require.NoError(t, d.CreateFollow(ctx, &models.Follow{UserID: a.ID, FollowingID: b.ID}))
	require.NoError(t, d.CreateFollow(ctx, &models.Follow{UserID: a.ID, FollowingID: c.ID}))
	require.NoError(t, d.CreateFollow(ctx, &models.Follow{UserID: c.ID, FollowingID: b.ID}))

	all, err := d.ListFollows(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := d.ListFollows(ctx, a.ID, "BOB")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bobby", got[0].Following)
	assert.Equal(t, "alice", got[0].User)

	// every term must match
	got, err = d.ListFollows(ctx, a.ID, "b  BY")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bobby", got[0].Following)

	got, err = d.ListFollows(ctx, a.ID, "bob carol")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostsAndComments(t *testing.T) {
	d := New()
	ctx := context.Background()
	a := seedUser(t, d, "alice")

	missing := int64(99)
	err := d.CreatePost(ctx, &models.Post{AuthorID: a.ID, Text: "x", GroupID: &missing})
	assert.ErrorIs(t, err, apperr.ErrBadReference)

	p := &models.Post{AuthorID: a.ID, Text: "hello"}
	require.NoError(t, d.CreatePost(ctx, p))
	assert.Equal(t, "alice", p.Author)
	assert.False(t, p.PubDate.IsZero())

	p2 := &models.Post{AuthorID: a.ID, Text: "other"}
	require.NoError(t, d.CreatePost(ctx, p2))

	c := &models.Comment{AuthorID: a.ID, PostID: p.ID, Text: "first"}
	require.NoError(t, d.CreateComment(ctx, c))

	_, err = d.GetComment(ctx, p2.ID, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNoRecord, "comment must not resolve under another post")

	require.NoError(t, d.DeletePost(ctx, p.ID))
	_, err = d.GetComment(ctx, p.ID, c.ID)
	assert.ErrorIs(t, err, apperr.ErrNoRecord)
}

func TestListPostsWindow(t *testing.T) {
	d := New()
	ctx := context.Background()
	a := seedUser(t, d, "alice")
	for range 5 {
		require.NoError(t, d.CreatePost(ctx, &models.Post{AuthorID: a.ID, Text: "p"}))
	}

	page, total, err := d.ListPosts(ctx, models.Page{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, _, err = d.ListPosts(ctx, models.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	page, _, err = d.ListPosts(ctx, models.Page{})
	require.NoError(t, err)
	assert.Len(t, page, 5)
}
