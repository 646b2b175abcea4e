package httpx

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"yatube/internal/apperr"
	"yatube/internal/rules"
	"yatube/internal/util"
)

// followInput names the user to follow by username. Any "user" field in the
// body is ignored.
type followInput struct {
	Following *string `json:"following"`
}

func (s *Server) handleFollowList(w http.ResponseWriter, r *http.Request) {
	me := identity(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	follows, err := s.Store.ListFollows(r.Context(), me.ID, search)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, follows)
}

func (s *Server) handleFollowCreate(w http.ResponseWriter, r *http.Request) {
	var in followInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := rules.Text("following", in.Following); err != nil {
		writeError(w, r, err)
		return
	}

	target, err := s.Store.UserByUsername(r.Context(), strings.TrimSpace(*in.Following))
	if errors.Is(err, apperr.ErrNoRecord) {
		writeError(w, r, apperr.NotFound("user"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	me := identity(r)
	if err := rules.CheckFollow(r.Context(), s.Store, me.ID, target.ID); err != nil {
		writeError(w, r, err)
		return
	}
	f := rules.NewFollow(me, target)
	if err := s.Store.CreateFollow(r.Context(), &f); err != nil {
		writeError(w, r, rules.FollowStoreError(err))
		return
	}
	log.Printf("follow uid=%d -> uid=%d", me.ID, target.ID)
	util.JSON(w, http.StatusCreated, f)
}
