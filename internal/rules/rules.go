// Package rules holds the validation and access logic of the API: who may
// follow whom, how comments are tied to their post, and who may change what.
package rules

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

const (
	MsgSelfFollow      = "you cannot follow yourself"
	MsgDuplicateFollow = "you are already following this user"
	MsgNotOwner        = "you do not have permission to modify another user's content"
	MsgRequired        = "this field is required"
	MsgBlank           = "this field may not be blank"
)

type FollowLookup interface {
	FollowExists(ctx context.Context, userID, followingID int64) (bool, error)
}

type PostLookup interface {
	GetPost(ctx context.Context, id int64) (*models.Post, error)
}

// CheckFollow rejects a self-follow first, then a pair that already exists.
func CheckFollow(ctx context.Context, fl FollowLookup, userID, followingID int64) error {
	if userID == followingID {
		return apperr.Invalid(apperr.NonField, MsgSelfFollow)
	}
	exists, err := fl.FollowExists(ctx, userID, followingID)
	if err != nil {
		return fmt.Errorf("check follow: %w", err)
	}
	if exists {
		return apperr.Invalid(apperr.NonField, MsgDuplicateFollow)
	}
	return nil
}

// FollowStoreError translates constraint violations raised by the store when
// a concurrent request won the race past CheckFollow.
func FollowStoreError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrDuplicate):
		return apperr.Invalid(apperr.NonField, MsgDuplicateFollow)
	case errors.Is(err, apperr.ErrSelfReference):
		return apperr.Invalid(apperr.NonField, MsgSelfFollow)
	}
	return err
}

// ScopedPost resolves the post a comment route is nested under.
func ScopedPost(ctx context.Context, pl PostLookup, postID int64) (*models.Post, error) {
	p, err := pl.GetPost(ctx, postID)
	if errors.Is(err, apperr.ErrNoRecord) {
		return nil, apperr.NotFound("post")
	}
	if err != nil {
		return nil, fmt.Errorf("scope post %d: %w", postID, err)
	}
	return p, nil
}

// CanMutate reports whether identity may perform method on a resource written
// by author. Safe methods are open to everyone.
func CanMutate(method string, identity, author int64) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return identity != 0 && identity == author
}

func Authorize(method string, identity, author int64) error {
	if CanMutate(method, identity, author) {
		return nil
	}
	return &apperr.PermissionError{Message: MsgNotOwner}
}

// Text validates a required free-text field.
func Text(field string, v *string) error {
	if v == nil {
		return apperr.Invalid(field, MsgRequired)
	}
	if strings.TrimSpace(*v) == "" {
		return apperr.Invalid(field, MsgBlank)
	}
	return nil
}

func NewPost(id models.Identity, text string, group *int64) models.Post {
	return models.Post{
		Text:     text,
		AuthorID: id.ID,
		Author:   id.Username,
		GroupID:  group,
	}
}

// NewComment builds a comment under post. Author and post come only from the
// session and the path.
func NewComment(id models.Identity, post *models.Post, text string) models.Comment {
	return models.Comment{
		Text:     text,
		AuthorID: id.ID,
		Author:   id.Username,
		PostID:   post.ID,
	}
}

func NewFollow(id models.Identity, following *models.User) models.Follow {
	return models.Follow{
		UserID:      id.ID,
		User:        id.Username,
		FollowingID: following.ID,
		Following:   following.Username,
	}
}
