package httpx

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostLifecycle(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")

	rec := e.do(http.MethodPost, "/posts/", alice, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[postView](t, rec)
	path := fmt.Sprintf("/posts/%d/", created.ID)

	rec = e.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[postView](t, rec)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "alice", got.Author)
	assert.Nil(t, got.Group)
	assert.NotEmpty(t, got.PubDate)

	rec = e.do(http.MethodPatch, path, bob, map[string]string{"text": "pwned"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(http.MethodPatch, path, "", map[string]string{"text": "pwned"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodGet, path, "", nil)
	assert.Equal(t, "hello", decodeBody[postView](t, rec).Text)

	rec = e.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeBody[map[string]string](t, rec)["detail"])
}

func TestPostCreateIgnoresClientAuthor(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	e.user("bob")

	rec := e.do(http.MethodPost, "/posts/", alice, map[string]any{"text": "mine", "author": "bob", "id": 999})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decodeBody[postView](t, rec)
	assert.Equal(t, "alice", p.Author)
	assert.NotEqual(t, int64(999), p.ID)
}

func TestPostValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")

	rec := e.do(http.MethodPost, "/posts/", alice, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "text")

	rec = e.do(http.MethodPost, "/posts/", alice, map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/posts/", alice, map[string]any{"text": "x", "group": 404})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "group")

	rec = e.do(http.MethodPost, "/posts/", alice, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "non_field_errors")

	rec = e.do(http.MethodPost, "/posts/", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostUpdateSemantics(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	cats := e.group("cats")

	rec := e.do(http.MethodPost, "/posts/", alice, map[string]any{"text": "v1", "group": cats.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decodeBody[postView](t, rec)
	require.NotNil(t, p.Group)
	path := fmt.Sprintf("/posts/%d/", p.ID)

	// PATCH without text keeps it
	rec = e.do(http.MethodPatch, path, alice, map[string]any{"group": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	p = decodeBody[postView](t, rec)
	assert.Equal(t, "v1", p.Text)
	assert.Nil(t, p.Group)

	// PUT requires text
	rec = e.do(http.MethodPut, path, alice, map[string]any{"group": cats.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPut, path, alice, map[string]any{"text": "v2", "author": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	p = decodeBody[postView](t, rec)
	assert.Equal(t, "v2", p.Text)
	assert.Equal(t, "alice", p.Author)

	rec = e.do(http.MethodPatch, path, alice, map[string]any{"group": 12345})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPatch, "/posts/777/", alice, map[string]any{"text": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(http.MethodGet, "/posts/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostListPagination(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")
	for i := range 5 {
		rec := e.do(http.MethodPost, "/posts/", alice, map[string]string{"text": fmt.Sprintf("post %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(http.MethodGet, "/posts/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]postView](t, rec), 5)

	rec = e.do(http.MethodGet, "/posts/?limit=2&offset=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[pageEnvelope[postView]](t, rec)
	assert.Equal(t, 5, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "post 2", page.Results[0].Text)
	require.NotNil(t, page.Next)
	assert.True(t, strings.HasSuffix(*page.Next, "/api/v1/posts/?limit=2&offset=4"), *page.Next)
	require.NotNil(t, page.Previous)
	assert.True(t, strings.HasSuffix(*page.Previous, "/api/v1/posts/?limit=2"), *page.Previous)

	rec = e.do(http.MethodGet, "/posts/?limit=2&offset=4", "", nil)
	page = decodeBody[pageEnvelope[postView]](t, rec)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)

	rec = e.do(http.MethodGet, "/posts/?limit=10", "", nil)
	page = decodeBody[pageEnvelope[postView]](t, rec)
	assert.Len(t, page.Results, 5)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
}

func TestPageLimitCapped(t *testing.T) {
	e := newEnv(t)
	e.srv.Cfg.MaxPageLimit = 3
	alice := e.user("alice")
	for range 4 {
		e.do(http.MethodPost, "/posts/", alice, map[string]string{"text": "x"})
	}
	rec := e.do(http.MethodGet, "/posts/?limit=50&offset=-1", "", nil)
	page := decodeBody[pageEnvelope[postView]](t, rec)
	assert.Len(t, page.Results, 3)
	assert.Equal(t, 4, page.Count)
}

func TestPostWrongFieldTypes(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")

	rec := e.do(http.MethodPost, "/posts/", alice, `{"text": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{"text": {"not a valid string"}}, decodeBody[map[string][]string](t, rec))

	rec = e.do(http.MethodPost, "/posts/", alice, `{"text": "x", "group": "cats"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{"group": {"not a valid integer"}}, decodeBody[map[string][]string](t, rec))

	rec = e.do(http.MethodPost, "/posts/", alice, `["x"]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{"non_field_errors": {"expected a JSON object"}}, decodeBody[map[string][]string](t, rec))

	rec = e.do(http.MethodPost, "/posts/", alice, `{"text": `)
	assert.Equal(t, map[string][]string{"non_field_errors": {"malformed JSON"}}, decodeBody[map[string][]string](t, rec))
	assert.NotContains(t, rec.Body.String(), "postInput")
}

func TestPatchWithoutBodyChangesNothing(t *testing.T) {
	e := newEnv(t)
	alice := e.user("alice")

	rec := e.do(http.MethodPost, "/posts/", alice, map[string]string{"text": "v1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("/posts/%d/", decodeBody[postView](t, rec).ID)

	rec = e.do(http.MethodPatch, path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", decodeBody[postView](t, rec).Text)

	// a full update still needs a body
	rec = e.do(http.MethodPut, path, alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
