package httpx

import (
	"net/http"

	"yatube/internal/util"
)

// Groups are read-only over HTTP; they are managed from the command line.

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	page, paged := s.parsePage(r)
	groups, total, err := s.Store.ListGroups(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !paged {
		util.JSON(w, http.StatusOK, groups)
		return
	}
	util.JSON(w, http.StatusOK, paginate(r, page, total, groups))
}

func (s *Server) handleGroupGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.Store.GetGroup(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusOK, g)
}
