package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"yatube/internal/app"
	"yatube/internal/apperr"
	"yatube/internal/auth"
	"yatube/internal/models"
	"yatube/internal/rules"
	"yatube/internal/util"
)

const (
	APIPrefix    = "/api/v1"
	maxBodyBytes = 1 << 20
)

// Store is everything the handlers read and write.
type Store interface {
	auth.Store
	rules.FollowLookup
	rules.PostLookup

	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context, p models.Page) ([]models.Group, int, error)

	ListPosts(ctx context.Context, p models.Page) ([]models.Post, int, error)
	CreatePost(ctx context.Context, p *models.Post) error
	UpdatePost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id int64) error

	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	GetComment(ctx context.Context, postID, id int64) (*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	UpdateComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, postID, id int64) error

	CreateFollow(ctx context.Context, f *models.Follow) error
	ListFollows(ctx context.Context, userID int64, search string) ([]models.Follow, error)
}

type Server struct {
	Store Store
	Cfg   app.Config
	Mux   *http.ServeMux
}

func NewServer(st Store, cfg app.Config) *Server {
	s := &Server{Store: st, Cfg: cfg, Mux: http.NewServeMux()}

	open := func(h http.HandlerFunc) http.Handler { return s.withSession(h) }
	authed := func(h http.HandlerFunc) http.Handler { return s.withSession(s.requireAuth(h)) }
	route := func(pattern string, h http.Handler) {
		method, path, _ := strings.Cut(pattern, " ")
		s.Mux.Handle(method+" "+APIPrefix+path, h)
	}

	// accounts
	route("POST /auth/signup/{$}", open(s.handleSignup))
	route("POST /auth/token/{$}", open(s.handleToken))
	route("POST /auth/logout/{$}", authed(s.handleLogout))

	// groups
	route("GET /groups/{$}", open(s.handleGroupList))
	route("GET /groups/{id}/{$}", open(s.handleGroupGet))

	// posts
	route("GET /posts/{$}", open(s.handlePostList))
	route("POST /posts/{$}", authed(s.handlePostCreate))
	route("GET /posts/{id}/{$}", open(s.handlePostGet))
	route("PUT /posts/{id}/{$}", authed(s.handlePostUpdate))
	route("PATCH /posts/{id}/{$}", authed(s.handlePostUpdate))
	route("DELETE /posts/{id}/{$}", authed(s.handlePostDelete))

	// comments, nested under their post
	route("GET /posts/{post_id}/comments/{$}", open(s.handleCommentList))
	route("POST /posts/{post_id}/comments/{$}", authed(s.handleCommentCreate))
	route("GET /posts/{post_id}/comments/{id}/{$}", open(s.handleCommentGet))
	route("PUT /posts/{post_id}/comments/{id}/{$}", authed(s.handleCommentUpdate))
	route("PATCH /posts/{post_id}/comments/{id}/{$}", authed(s.handleCommentUpdate))
	route("DELETE /posts/{post_id}/comments/{id}/{$}", authed(s.handleCommentDelete))

	// follows
	route("GET /follow/{$}", authed(s.handleFollowList))
	route("POST /follow/{$}", authed(s.handleFollowCreate))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Mux.ServeHTTP(w, r) }

// ------------------------------------------------------------------------------
// ------------helpers-----------------------------------------------------------

// writeError maps err onto the response the client sees.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		util.FieldErrors(w, status, ve.Field, ve.Message)
	case status == http.StatusNotFound:
		util.Detail(w, status, "not found")
	case status == http.StatusInternalServerError:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		util.Detail(w, status, "internal server error")
	default:
		util.Detail(w, status, err.Error())
	}
}

// decode reads a JSON body into v. An empty PATCH body is a partial update
// that changes nothing.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if r.Method == http.MethodPatch {
			return nil
		}
		return apperr.Invalid(apperr.NonField, "request body is empty")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return apperr.Invalid(apperr.NonField, "expected a JSON object")
		}
		return apperr.Invalid(typeErr.Field, "not a valid "+jsonKind(typeErr.Type))
	case errors.As(err, &sizeErr):
		return apperr.Invalid(apperr.NonField, "request body too large")
	default:
		return apperr.Invalid(apperr.NonField, "malformed JSON")
	}
}

// jsonKind names t the way a JSON client would.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// pathID reads a numeric path parameter. A non-numeric id cannot name a row.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound(name)
	}
	return id, nil
}

// identity returns the caller; requireAuth has already rejected anonymous
// requests on the routes that use it.
func identity(r *http.Request) models.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

// nullableID distinguishes an absent field from an explicit null.
type nullableID struct {
	Set bool
	ID  *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.ID = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		// the decoder fills in the field name
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeFor[int64]()}
	}
	n.ID = &id
	return nil
}
