// Package migrate applies the embedded schema migrations with goose
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
)

//go:embed migrations/*.sql
var migrations embed.FS

// Up opens a short lived database/sql handle on url, applies all pending
// migrations, and closes it. Safe to run on every boot; goose tracks the
// applied version in its own table
func Up(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("migrate: empty database url")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("migrate open: %w", err)
	}
	defer db.Close()

	return UpDB(ctx, db)
}

// UpDB applies all pending migrations on an existing handle
func UpDB(ctx context.Context, db *sql.DB) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrate fs: %w", err)
	}
	goose.SetBaseFS(sub)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
