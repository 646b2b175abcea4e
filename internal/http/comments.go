package httpx

import (
	"errors"
	"net/http"

	"yatube/internal/apperr"
	"yatube/internal/models"
	"yatube/internal/rules"
	"yatube/internal/util"
)

// commentInput has no post or author: both come from the path and session.
type commentInput struct {
	Text *string `json:"text"`
}

// scopedPost resolves {post_id}; every comment route goes through it.
func (s *Server) scopedPost(r *http.Request) (*models.Post, error) {
	postID, err := pathID(r, "post_id")
	if err != nil {
		return nil, err
	}
	return rules.ScopedPost(r.Context(), s.Store, postID)
}

// scopedComment resolves {id} under the scoped post.
func (s *Server) scopedComment(r *http.Request) (*models.Comment, error) {
	post, err := s.scopedPost(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	return s.Store.GetComment(r.Context(), post.ID, id)
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	post, err := s.scopedPost(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := s.Store.ListComments(r.Context(), post.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, comments)
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	post, err := s.scopedPost(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in commentInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Text("text", in.Text); err != nil {
		writeError(w, r, err)
		return
	}

	c := rules.NewComment(identity(r), post, *in.Text)
	if err := s.Store.CreateComment(r.Context(), &c); err != nil {
		// the post was deleted between lookup and insert
		if errors.Is(err, apperr.ErrBadReference) {
			err = apperr.NotFound("post")
		}
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusCreated, c)
}

func (s *Server) handleCommentGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.scopedComment(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, c)
}

func (s *Server) handleCommentUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := s.scopedComment(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Authorize(r.Method, identity(r).ID, c.AuthorID); err != nil {
		writeError(w, r, err)
		return
	}

	var in commentInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Text != nil || r.Method == http.MethodPut {
		if err := rules.Text("text", in.Text); err != nil {
			writeError(w, r, err)
			return
		}
		c.Text = *in.Text
	}

	if err := s.Store.UpdateComment(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, c)
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	c, err := s.scopedComment(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Authorize(r.Method, identity(r).ID, c.AuthorID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Store.DeleteComment(r.Context(), c.PostID, c.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
