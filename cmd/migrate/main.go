package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uxdj/backend/internal/config"
	"github.com/uxdj/backend/internal/logging"
	"github.com/uxdj/backend/internal/repository"
	"github.com/uxdj/backend/internal/service"
	"github.com/uxdj/backend/pkg/auth"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type migrator struct {
	cfg  *config.Config
	pool *pgxpool.Pool
	dir  string
}

func newRootCommand() *cobra.Command {
	m := &migrator{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return m.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if m.pool != nil {
				m.pool.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.up(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&m.dir, "dir", "", "migrations directory (default: ./migrations or ../migrations)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.up(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Drop every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.dropAll(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "fresh",
		Short: "Drop every table and apply all migrations in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.dropAll(cmd.Context()); err != nil {
				return err
			}
			return m.up(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insert sample content and the configured admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.seed(cmd.Context())
		},
	})
	return root
}

func (m *migrator) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level})
	m.cfg = cfg

	if m.dir == "" {
		m.dir = findMigrationDir()
	}
	pool, err := repository.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m.pool = pool
	return nil
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles returns the .up.sql file names in dir, sorted.
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) execFile(ctx context.Context, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("exec %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// up
// ---------------------------------------------------------------------------

func (m *migrator) up(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	upFiles, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	applied := 0
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		if err := m.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if exists {
			continue
		}

		if err := m.execFile(ctx, filepath.Join(m.dir, filename)); err != nil {
			return err
		}
		if _, err := m.pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		applied++
		slog.Info("migration completed", "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
	return nil
}

// ---------------------------------------------------------------------------
// reset
// ---------------------------------------------------------------------------

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	if err := m.execFile(ctx, filepath.Join(m.dir, "000_drop_all.sql")); err != nil {
		return err
	}
	slog.Info("all tables dropped")
	return nil
}

// ---------------------------------------------------------------------------
// seed
// ---------------------------------------------------------------------------

func (m *migrator) seed(ctx context.Context) error {
	if err := m.execFile(ctx, filepath.Join(m.dir, "seed", "seed.sql")); err != nil {
		return err
	}
	slog.Info("sample content inserted")

	if m.cfg.Auth.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL not set, skipping admin user")
		return nil
	}
	users := service.NewAuthService(
		repository.NewPgUserRepository(m.pool),
		auth.SessionSecretBytes(m.cfg.Auth.SessionSecret),
		time.Hour,
	)
	if err := users.EnsureAdmin(ctx, m.cfg.Auth.AdminEmail, m.cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("admin user ensured", "email", m.cfg.Auth.AdminEmail)
	return nil
}
