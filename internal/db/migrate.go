package db

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate runs the idempotent schema file against the pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, schemaPath string) error {
	b, err := os.ReadFile(schemaPath)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, string(b))
	return err
}
