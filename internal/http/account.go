package httpx

import (
	"errors"
	"log"
	"net/http"
	"time"

	"yatube/internal/apperr"
	"yatube/internal/auth"
	"yatube/internal/util"
)

type signupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

//---------------------------------------------------------------------------------
//------------handleSignup---------------------------------------------------------

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := auth.Register(r.Context(), s.Store, in.Email, in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		err = apperr.Invalid("email", err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		err = apperr.Invalid("username", err.Error())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.JSON(w, http.StatusCreated, u)
}

//---------------------------------------------------------------------------------
//------------handleToken----------------------------------------------------------

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var in tokenInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := auth.Login(r.Context(), s.Store, in.Username, in.Password, s.Cfg.SessionLifetime)
	if errors.Is(err, auth.ErrInvalidLogin) {
		log.Printf("login FAIL username=%s", in.Username)
		util.Detail(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	util.JSON(w, http.StatusOK, tokenOutput{Token: sess.ID, ExpiresAt: sess.ExpiresAt})
}

//---------------------------------------------------------------------------------
//------------handleLogout---------------------------------------------------------

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.Logout(r.Context(), s.Store, sessionToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}
