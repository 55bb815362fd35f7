package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// MigrationsDirEnv overrides the lookup of database/migrations.
const MigrationsDirEnv = "MIGRATIONS_DIR"

// splitDatabaseURL returns the maintenance ("postgres") URL and the target database name.
func splitDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", "", errors.New("database url has no database name")
	}
	u.Path = "/postgres"
	return u.String(), name, nil
}

func createDatabaseIfMissing(ctx context.Context, databaseURL string, log *zap.Logger) error {
	adminURL, name, err := splitDatabaseURL(databaseURL)
	if err != nil {
		return err
	}
	admin, err := sql.Open("postgres", adminURL)
	if err != nil {
		return fmt.Errorf("open maintenance db: %w", err)
	}
	defer admin.Close()

	var found int
	err = admin.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", name).Scan(&found)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("look up database %q: %w", name, err)
	}
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create database %q: %w", name, err)
	}
	log.Info("database: created", zap.String("database", name))
	return nil
}

// migrationsSource resolves the file:// source URL, checking MIGRATIONS_DIR
// first and then database/migrations relative to the working directory and its parent.
func migrationsSource() (string, error) {
	var candidates []string
	if dir := os.Getenv(MigrationsDirEnv); dir != "" {
		candidates = append(candidates, dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			filepath.Join(cwd, "database", "migrations"),
			filepath.Join(cwd, "..", "database", "migrations"))
	}
	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		return "file://" + filepath.ToSlash(abs), nil
	}
	return "", fmt.Errorf("migrations directory not found (tried %s)", strings.Join(candidates, ", "))
}

// MigrateUp creates the database when missing and applies every pending migration.
func MigrateUp(databaseURL string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := createDatabaseIfMissing(ctx, databaseURL, log); err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}

	source, err := migrationsSource()
	if err != nil {
		return err
	}
	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("migrate new: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info("migrate: no pending migrations")
		return nil
	}
	version, dirty, err := m.Version()
	if err != nil {
		log.Info("migrate: up ok")
		return nil
	}
	log.Info("migrate: up ok", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
