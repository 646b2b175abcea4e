package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"yatube/internal/app"
	"yatube/internal/db"
)

var (
	// Global flags, defaulted from the environment
	cfg = app.LoadConfig()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "yatube REST API",
	Long: `yatube serves a JSON API for posts, comments, groups and follows.

Configuration comes from the environment (ADDR, DATABASE_URL, SCHEMA_PATH,
SESSION_LIFETIME_HOURS, REQUEST_TIMEOUT_SECONDS, MAX_PAGE_LIMIT); flags
override it. DATABASE_URL=memory:// runs against an in-memory store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "Database connection URL")
	rootCmd.PersistentFlags().StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "Path to the schema file")
}

var errMemoryStore = errors.New("this command needs a PostgreSQL DATABASE_URL, not memory://")

// openPostgres connects and applies the schema.
func openPostgres(ctx context.Context) (*db.Store, error) {
	if cfg.InMemory() {
		return nil, errMemoryStore
	}
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool, cfg.SchemaPath); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db.New(pool), nil
}
