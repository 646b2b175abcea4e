// internal/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrNoSession     = errors.New("session not found")
	ErrExpired       = errors.New("session expired")
)

// HashCost is the bcrypt cost used for new passwords.
var HashCost = bcrypt.DefaultCost

var now = time.Now

// Store is the persistence auth needs.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// StartSession stores s and drops the user's previous sessions atomically.
	StartSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// ----------------------------
// Context helpers
// ----------------------------

type ctxKeyIdentity struct{}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, _ := ctx.Value(ctxKeyIdentity{}).(models.Identity)
	return id, id.ID != 0
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := IdentityFrom(ctx)
	return id.ID, ok
}

// ----------------------------
// Register
// ----------------------------

func Register(ctx context.Context, st Store, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	switch {
	case username == "":
		return nil, apperr.Invalid("username", "this field is required")
	case email == "":
		return nil, apperr.Invalid("email", "this field is required")
	case password == "":
		return nil, apperr.Invalid("password", "this field is required")
	case len(password) < 6:
		return nil, apperr.Invalid("password", "password must be at least 6 characters")
	}

	if _, err := st.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, apperr.ErrNoRecord) {
		return nil, err
	}
	if _, err := st.UserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, apperr.ErrNoRecord) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{Email: email, Username: username, PasswordHash: string(hash)}
	err = st.CreateUser(ctx, u)
	// a concurrent signup can still hit the UNIQUE constraints
	var dup *apperr.DuplicateError
	if errors.As(err, &dup) {
		if strings.Contains(dup.Constraint, "email") {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ----------------------------
// Login (issues a UUID session token)
// ----------------------------

func Login(ctx context.Context, st Store, username, password string, lifetime time.Duration) (*models.Session, error) {
	username = strings.TrimSpace(username)

	u, err := st.UserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNoRecord) {
		log.Printf("auth.Login: no user username=%s", username)
		return nil, ErrInvalidLogin
	}
	if err != nil {
		log.Printf("auth.Login: query user err: %v", err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Printf("auth.Login: bad password username=%s", username)
		return nil, ErrInvalidLogin
	}

	t := now()
	s := &models.Session{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		ExpiresAt: t.Add(lifetime),
		CreatedAt: t,
	}
	if err := st.StartSession(ctx, s); err != nil {
		log.Printf("auth.Login: start session err: %v", err)
		return nil, err
	}

	log.Printf("auth.Login: OK username=%s uid=%d", username, u.ID)
	return s, nil
}

// ----------------------------
// Logout
// ----------------------------

func Logout(ctx context.Context, st Store, sid string) error {
	err := st.DeleteSession(ctx, sid)
	if errors.Is(err, apperr.ErrNoRecord) {
		return nil
	}
	return err
}

// ----------------------------
// UserFromSession: resolves a token to the identity behind it
// ----------------------------

func UserFromSession(ctx context.Context, st Store, sid string) (models.Identity, time.Time, error) {
	if _, err := uuid.Parse(sid); err != nil {
		return models.Identity{}, time.Time{}, ErrNoSession
	}
	s, err := st.GetSession(ctx, sid)
	if errors.Is(err, apperr.ErrNoRecord) {
		return models.Identity{}, time.Time{}, ErrNoSession
	}
	if err != nil {
		return models.Identity{}, time.Time{}, err
	}
	if !s.ExpiresAt.After(now()) {
		return models.Identity{}, s.ExpiresAt, ErrExpired
	}
	u, err := st.GetUser(ctx, s.UserID)
	if err != nil {
		return models.Identity{}, time.Time{}, fmt.Errorf("session user %d: %w", s.UserID, err)
	}
	return models.Identity{ID: u.ID, Username: u.Username}, s.ExpiresAt, nil
}
