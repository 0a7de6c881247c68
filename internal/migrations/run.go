// Package migrations применяет схему базы данных. Для PostgreSQL используется
// golang-migrate со встроенными файлами, для SQLite встроенные скрипты
// выполняются напрямую (все операторы идемпотентны).
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// Run применяет миграции для указанного драйвера ("postgres" или "sqlite").
func Run(ctx context.Context, db *sql.DB, driver string) error {
	switch driver {
	case "postgres":
		return runPostgres(db)
	case "sqlite":
		return runSQLite(ctx, db)
	default:
		return fmt.Errorf("migrations.Run: unknown driver %q", driver)
	}
}

func runPostgres(db *sql.DB) error {
	const op = "migrations.runPostgres"
	src, err := iofs.New(postgresFS, "postgres")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx_v5", driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func runSQLite(ctx context.Context, db *sql.DB) error {
	const op = "migrations.runSQLite"
	files, err := fs.Glob(sqliteFS, "sqlite/*.up.sql")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sort.Strings(files)

	for _, name := range files {
		raw, err := sqliteFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %s: %w", op, name, err)
			}
		}
	}
	return nil
}
