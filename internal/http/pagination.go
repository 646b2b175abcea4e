package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	"yatube/internal/models"
)

// pageEnvelope is the limit/offset listing body.
type pageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePage reads limit/offset. Paging applies only when limit is a positive
// integer; limit is capped at the configured maximum.
func (s *Server) parsePage(r *http.Request) (models.Page, bool) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		return models.Page{}, false
	}
	if s.Cfg.MaxPageLimit > 0 && limit > s.Cfg.MaxPageLimit {
		limit = s.Cfg.MaxPageLimit
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return models.Page{Limit: limit, Offset: offset}, true
}

func paginate[T any](r *http.Request, p models.Page, total int, items []T) pageEnvelope[T] {
	env := pageEnvelope[T]{Count: total, Results: items}
	if p.Offset+p.Limit < total {
		next := pageURL(r, p.Limit, p.Offset+p.Limit)
		env.Next = &next
	}
	if p.Offset > 0 {
		prev := pageURL(r, p.Limit, max(p.Offset-p.Limit, 0))
		env.Previous = &prev
	}
	return env
}

// pageURL rebuilds the absolute request URL for another window. A zero
// offset is dropped from the query.
func pageURL(r *http.Request, limit, offset int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
