// Package memdb is an in-memory store with the same constraints as the
// PostgreSQL schema. It backs DATABASE_URL=memory:// and the handler tests.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

type DB struct {
	mu       sync.RWMutex
	seq      int64
	users    map[int64]models.User
	sessions map[string]models.Session
	groups   map[int64]models.Group
	posts    map[int64]models.Post
	comments map[int64]models.Comment
	follows  map[int64]models.Follow

	now func() time.Time
}

func New() *DB {
	return &DB{
		users:    map[int64]models.User{},
		sessions: map[string]models.Session{},
		groups:   map[int64]models.Group{},
		posts:    map[int64]models.Post{},
		comments: map[int64]models.Comment{},
		follows:  map[int64]models.Follow{},
		now:      time.Now,
	}
}

func (d *DB) nextID() int64 {
	d.seq++
	return d.seq
}

func noRecord(what string, key any) error {
	return fmt.Errorf("%s %v: %w", what, key, apperr.ErrNoRecord)
}

// window applies p to n rows and returns the slice bounds.
func window(p models.Page, n int) (int, int) {
	lo := min(max(p.Offset, 0), n)
	hi := n
	if p.Limit > 0 && lo+p.Limit < n {
		hi = lo + p.Limit
	}
	return lo, hi
}

// ----------------------------
// Users
// ----------------------------

func (d *DB) CreateUser(_ context.Context, u *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, x := range d.users {
		if x.Username == u.Username {
			return &apperr.DuplicateError{Constraint: "users_username_key"}
		}
		if x.Email == u.Email {
			return &apperr.DuplicateError{Constraint: "users_email_key"}
		}
	}
	u.ID = d.nextID()
	u.CreatedAt = d.now()
	d.users[u.ID] = *u
	return nil
}

func (d *DB) GetUser(_ context.Context, id int64) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, noRecord("user", id)
	}
	return &u, nil
}

func (d *DB) UserByUsername(_ context.Context, username string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, noRecord("user", username)
}

func (d *DB) UserByEmail(_ context.Context, email string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, noRecord("user", email)
}

// ----------------------------
// Sessions
// ----------------------------

func (d *DB) StartSession(_ context.Context, s *models.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[s.UserID]; !ok {
		return fmt.Errorf("session user %d: %w", s.UserID, apperr.ErrBadReference)
	}
	for id, x := range d.sessions {
		if x.UserID == s.UserID {
			delete(d.sessions, id)
		}
	}
	d.sessions[s.ID] = *s
	return nil
}

func (d *DB) GetSession(_ context.Context, id string) (*models.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[id]
	if !ok {
		return nil, noRecord("session", id)
	}
	return &s, nil
}

func (d *DB) DeleteSession(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[id]; !ok {
		return noRecord("session", id)
	}
	delete(d.sessions, id)
	return nil
}

// ----------------------------
// Groups
// ----------------------------

func (d *DB) CreateGroup(_ context.Context, g *models.Group) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, x := range d.groups {
		if x.Slug == g.Slug {
			return &apperr.DuplicateError{Constraint: "groups_slug_key"}
		}
	}
	g.ID = d.nextID()
	d.groups[g.ID] = *g
	return nil
}

func (d *DB) GetGroup(_ context.Context, id int64) (*models.Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.groups[id]
	if !ok {
		return nil, noRecord("group", id)
	}
	return &g, nil
}

func (d *DB) ListGroups(_ context.Context, p models.Page) ([]models.Group, int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all := make([]models.Group, 0, len(d.groups))
	for _, g := range d.groups {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	lo, hi := window(p, len(all))
	return all[lo:hi], len(all), nil
}

// ----------------------------
// Posts
// ----------------------------

func (d *DB) checkPostRefs(p *models.Post) error {
	if _, ok := d.users[p.AuthorID]; !ok {
		return fmt.Errorf("post author %d: %w", p.AuthorID, apperr.ErrBadReference)
	}
	if p.GroupID != nil {
		if _, ok := d.groups[*p.GroupID]; !ok {
			return fmt.Errorf("post group %d: %w", *p.GroupID, apperr.ErrBadReference)
		}
	}
	return nil
}

func (d *DB) CreatePost(_ context.Context, p *models.Post) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkPostRefs(p); err != nil {
		return err
	}
	p.ID = d.nextID()
	p.PubDate = d.now()
	p.Author = d.users[p.AuthorID].Username
	d.posts[p.ID] = *p
	return nil
}

func (d *DB) GetPost(_ context.Context, id int64) (*models.Post, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.posts[id]
	if !ok {
		return nil, noRecord("post", id)
	}
	return &p, nil
}

func (d *DB) ListPosts(_ context.Context, pg models.Page) ([]models.Post, int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	all := make([]models.Post, 0, len(d.posts))
	for _, p := range d.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	lo, hi := window(pg, len(all))
	return all[lo:hi], len(all), nil
}

// UpdatePost writes text and group. Author and pub_date are left alone.
func (d *DB) UpdatePost(_ context.Context, p *models.Post) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.posts[p.ID]
	if !ok {
		return noRecord("post", p.ID)
	}
	if p.GroupID != nil {
		if _, ok := d.groups[*p.GroupID]; !ok {
			return fmt.Errorf("post group %d: %w", *p.GroupID, apperr.ErrBadReference)
		}
	}
	cur.Text = p.Text
	cur.GroupID = p.GroupID
	d.posts[p.ID] = cur
	*p = cur
	return nil
}

func (d *DB) DeletePost(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.posts[id]; !ok {
		return noRecord("post", id)
	}
	delete(d.posts, id)
	for cid, c := range d.comments {
		if c.PostID == id {
			delete(d.comments, cid)
		}
	}
	return nil
}

// ----------------------------
// Comments
// ----------------------------

func (d *DB) CreateComment(_ context.Context, c *models.Comment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.posts[c.PostID]; !ok {
		return fmt.Errorf("comment post %d: %w", c.PostID, apperr.ErrBadReference)
	}
	u, ok := d.users[c.AuthorID]
	if !ok {
		return fmt.Errorf("comment author %d: %w", c.AuthorID, apperr.ErrBadReference)
	}
	c.ID = d.nextID()
	c.Created = d.now()
	c.Author = u.Username
	d.comments[c.ID] = *c
	return nil
}

func (d *DB) GetComment(_ context.Context, postID, id int64) (*models.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.comments[id]
	if !ok || c.PostID != postID {
		return nil, noRecord("comment", id)
	}
	return &c, nil
}

func (d *DB) ListComments(_ context.Context, postID int64) ([]models.Comment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range d.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *DB) UpdateComment(_ context.Context, c *models.Comment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.comments[c.ID]
	if !ok || cur.PostID != c.PostID {
		return noRecord("comment", c.ID)
	}
	cur.Text = c.Text
	d.comments[c.ID] = cur
	*c = cur
	return nil
}

func (d *DB) DeleteComment(_ context.Context, postID, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.comments[id]
	if !ok || c.PostID != postID {
		return noRecord("comment", id)
	}
	delete(d.comments, id)
	return nil
}

// ----------------------------
// Follows
// ----------------------------

func (d *DB) FollowExists(_ context.Context, userID, followingID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, f := range d.follows {
		if f.UserID == userID && f.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

// CreateFollow enforces the same UNIQUE and CHECK constraints as the schema.
func (d *DB) CreateFollow(_ context.Context, f *models.Follow) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.UserID == f.FollowingID {
		return fmt.Errorf("follow %d->%d: %w", f.UserID, f.FollowingID, apperr.ErrSelfReference)
	}
	u, ok := d.users[f.UserID]
	if !ok {
		return fmt.Errorf("follow user %d: %w", f.UserID, apperr.ErrBadReference)
	}
	g, ok := d.users[f.FollowingID]
	if !ok {
		return fmt.Errorf("follow following %d: %w", f.FollowingID, apperr.ErrBadReference)
	}
	for _, x := range d.follows {
		if x.UserID == f.UserID && x.FollowingID == f.FollowingID {
			return &apperr.DuplicateError{Constraint: "follows_user_id_following_id_key"}
		}
	}
	f.ID = d.nextID()
	f.User = u.Username
	f.Following = g.Username
	d.follows[f.ID] = *f
	return nil
}

// ListFollows returns the follows of userID whose followed username contains
// every whitespace-separated term of search, case-insensitively.
func (d *DB) ListFollows(_ context.Context, userID int64, search string) ([]models.Follow, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	terms := strings.Fields(strings.ToLower(search))
	out := []models.Follow{}
next:
	for _, f := range d.follows {
		if f.UserID != userID {
			continue
		}
		name := strings.ToLower(f.Following)
		for _, term := range terms {
			if !strings.Contains(name, term) {
				continue next
			}
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
