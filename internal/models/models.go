package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	ID       int64
	Username string
}

type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type Post struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	GroupID  *int64    `json:"group"`
	PubDate  time.Time `json:"pub_date"`
}

type Comment struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	PostID   int64     `json:"post"`
	Created  time.Time `json:"created"`
}

// Follow records that User follows Following.
type Follow struct {
	ID          int64  `json:"-"`
	UserID      int64  `json:"-"`
	User        string `json:"user"`
	FollowingID int64  `json:"-"`
	Following   string `json:"following"`
}

// Page selects a window of a listing. A zero Limit means no window.
type Page struct {
	Limit  int
	Offset int
}
