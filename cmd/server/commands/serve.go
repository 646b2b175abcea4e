package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yatube/internal/apperr"
	"yatube/internal/db"
	httpx "yatube/internal/http"
	"yatube/internal/memdb"
	"yatube/internal/models"
)

// serveStore is the API surface plus the group seeding done at startup.
type serveStore interface {
	httpx.Store
	groupCreator
}

var (
	_ serveStore = (*db.Store)(nil)
	_ serveStore = (*memdb.DB)(nil)
)

// serve flags
var serveGroups []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The schema is applied before listening.

Examples:
  server serve                          # listen on $ADDR (default :8080)
  server serve --addr :9000 --db memory://
  server serve --db memory:// --group cats="Cats" --group dogs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	serveCmd.Flags().DurationVar(&cfg.SessionLifetime, "session-lifetime", cfg.SessionLifetime, "Lifetime of issued tokens")
	serveCmd.Flags().DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request timeout")
	serveCmd.Flags().IntVar(&cfg.MaxPageLimit, "max-page-limit", cfg.MaxPageLimit, "Largest accepted ?limit=")
	serveCmd.Flags().StringArrayVar(&serveGroups, "group", nil, "Ensure a group slug[=Title] exists before listening (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store serveStore
	if cfg.InMemory() {
		log.Printf("using in-memory store")
		store = memdb.New()
	} else {
		pg, err := openPostgres(ctx)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
	}

	if err := ensureGroups(ctx, store, serveGroups); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpx.WithAccessLog(httpx.WithTimeout(httpx.NewServer(store, cfg), cfg.RequestTimeout)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type groupCreator interface {
	CreateGroup(ctx context.Context, g *models.Group) error
}

// parseGroup reads slug[=Title]. The title defaults to the slug.
func parseGroup(s string) (models.Group, error) {
	slug, title, _ := strings.Cut(s, "=")
	slug, title = strings.TrimSpace(slug), strings.TrimSpace(title)
	if slug == "" {
		return models.Group{}, fmt.Errorf("--group %q: slug is required", s)
	}
	if title == "" {
		title = slug
	}
	return models.Group{Slug: slug, Title: title}, nil
}

// ensureGroups creates the listed groups. Slugs that already exist are left
// alone, so restarting against PostgreSQL is safe.
func ensureGroups(ctx context.Context, st groupCreator, defs []string) error {
	for _, def := range defs {
		g, err := parseGroup(def)
		if err != nil {
			return err
		}
		err = st.CreateGroup(ctx, &g)
		if errors.Is(err, apperr.ErrDuplicate) {
			log.Printf("group %s exists", g.Slug)
			continue
		}
		if err != nil {
			return fmt.Errorf("create group %s: %w", g.Slug, err)
		}
		log.Printf("group %d (%s) created", g.ID, g.Slug)
	}
	return nil
}
