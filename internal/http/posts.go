package httpx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"yatube/internal/apperr"
	"yatube/internal/rules"
	"yatube/internal/util"
)

// postInput is what a client may write. author, id and pub_date are not
// accepted from the body.
type postInput struct {
	Text  *string    `json:"text"`
	Group nullableID `json:"group"`
}

// checkGroup rejects a group id that names no group.
func (s *Server) checkGroup(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.Store.GetGroup(ctx, *id)
	if errors.Is(err, apperr.ErrNoRecord) {
		return apperr.Invalid("group", fmt.Sprintf("invalid pk %d: object does not exist", *id))
	}
	return err
}

func groupRefError(err error, id *int64) error {
	if errors.Is(err, apperr.ErrBadReference) && id != nil {
		return apperr.Invalid("group", fmt.Sprintf("invalid pk %d: object does not exist", *id))
	}
	return err
}

func (s *Server) handlePostList(w http.ResponseWriter, r *http.Request) {
	page, paged := s.parsePage(r)
	posts, total, err := s.Store.ListPosts(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !paged {
		util.JSON(w, http.StatusOK, posts)
		return
	}
	util.JSON(w, http.StatusOK, paginate(r, page, total, posts))
}

func (s *Server) handlePostGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.Store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, p)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Text("text", in.Text); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.checkGroup(r.Context(), in.Group.ID); err != nil {
		writeError(w, r, err)
		return
	}

	me := identity(r)
	p := rules.NewPost(me, *in.Text, in.Group.ID)
	if err := s.Store.CreatePost(r.Context(), &p); err != nil {
		writeError(w, r, groupRefError(err, in.Group.ID))
		return
	}
	log.Printf("create post uid=%d id=%d", me.ID, p.ID)
	util.JSON(w, http.StatusCreated, p)
}

// handlePostUpdate serves PUT and PATCH. PUT requires text; both leave
// fields absent from the body untouched.
func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.Store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Authorize(r.Method, identity(r).ID, p.AuthorID); err != nil {
		writeError(w, r, err)
		return
	}

	var in postInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	partial := r.Method == http.MethodPatch
	if in.Text != nil || !partial {
		if err := rules.Text("text", in.Text); err != nil {
			writeError(w, r, err)
			return
		}
		p.Text = *in.Text
	}
	if in.Group.Set {
		if err := s.checkGroup(r.Context(), in.Group.ID); err != nil {
			writeError(w, r, err)
			return
		}
		p.GroupID = in.Group.ID
	}

	if err := s.Store.UpdatePost(r.Context(), p); err != nil {
		writeError(w, r, groupRefError(err, p.GroupID))
		return
	}
	util.JSON(w, http.StatusOK, p)
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.Store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	me := identity(r)
	if err := rules.Authorize(r.Method, me.ID, p.AuthorID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Store.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.Printf("delete post uid=%d id=%d", me.ID, id)
	w.WriteHeader(http.StatusNoContent)
}
