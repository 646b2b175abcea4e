package httpx

import (
	"log"
	"net/http"
	"strings"
	"time"

	"yatube/internal/apperr"
	"yatube/internal/auth"
	"yatube/internal/util"
)

const CookieName = "session_id"

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := sessionToken(r); tok != "" {
			if id, exp, err := auth.UserFromSession(r.Context(), s.Store, tok); err == nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), id))
				log.Printf("session OK uid=%d exp=%s", id.ID, exp.Format(time.RFC3339))
			} else {
				// the request continues anonymously
				log.Printf("session FAIL err=%v", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFrom(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			util.Detail(w, http.StatusUnauthorized, apperr.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// access log

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithAccessLog logs METHOD PATH -> STATUS (duration).
func WithAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Truncate(time.Millisecond))
	})
}

// WithTimeout bounds the whole request to d.
func WithTimeout(next http.Handler, d time.Duration) http.Handler {
	th := http.TimeoutHandler(next, d, `{"detail": "request timeout"}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		th.ServeHTTP(&timeoutRW{ResponseWriter: w}, r)
	})
}

// timeoutRW types the body TimeoutHandler writes on expiry, which otherwise
// goes out without a Content-Type.
type timeoutRW struct {
	http.ResponseWriter
}

func (w *timeoutRW) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}
