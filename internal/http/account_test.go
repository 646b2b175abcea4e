package httpx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupTokenLogout(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "alice", "email": "Alice@Example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "alice", u["username"])
	assert.Equal(t, "alice@example.com", u["email"])
	assert.NotContains(t, u, "password_hash")

	rec = e.do(http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "username")

	rec = e.do(http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "secret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "email")

	rec = e.do(http.MethodPost, "/auth/token/", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/auth/token/", "", map[string]string{"username": "alice", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody[tokenOutput](t, rec)
	require.NotEmpty(t, tok.Token)
	assert.NotEmpty(t, rec.Result().Cookies())

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/follow/", tok.Token, nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPost, "/auth/logout/", tok.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/follow/", tok.Token, nil).Code)
}

func TestSignupValidation(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/auth/signup/", "", map[string]string{"username": "bob", "email": "b@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec), "password")
}

func TestGroupsReadOnly(t *testing.T) {
	e := newEnv(t)
	cats := e.group("cats")
	e.group("dogs")

	rec := e.do(http.MethodGet, "/groups/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[[]map[string]any](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, "cats", groups[0]["slug"])
	assert.Equal(t, "about cats", groups[0]["description"])

	rec = e.do(http.MethodGet, "/groups/?limit=1", "", nil)
	page := decodeBody[pageEnvelope[map[string]any]](t, rec)
	assert.Equal(t, 2, page.Count)
	assert.Len(t, page.Results, 1)

	rec = e.do(http.MethodGet, fmt.Sprintf("/groups/%d/", cats.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/groups/999/", "", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, e.do(http.MethodDelete, fmt.Sprintf("/groups/%d/", cats.ID), "", nil).Code)
}
