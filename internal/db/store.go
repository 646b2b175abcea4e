// Package db is the PostgreSQL store of the API.
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"yatube/internal/apperr"
	"yatube/internal/models"
)

// SQLSTATE codes for integrity violations.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() { s.pool.Close() }

// mapErr converts pgx errors into apperr sentinels. what describes the row
// for the error message.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, apperr.ErrNoRecord)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &apperr.DuplicateError{Constraint: pgErr.ConstraintName}
		case codeCheckViolation:
			return fmt.Errorf("%s: %w (%s)", what, apperr.ErrSelfReference, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", what, apperr.ErrBadReference, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// limitArg turns a zero limit into NULL, which PostgreSQL reads as LIMIT ALL.
func limitArg(p models.Page) any {
	if p.Limit <= 0 {
		return nil
	}
	return p.Limit
}

func offsetArg(p models.Page) int {
	return max(p.Offset, 0)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
