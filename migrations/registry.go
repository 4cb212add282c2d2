package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	stepgate "github.com/goliatone/go-stepgate"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const migrationsRoot = "data/sql/migrations"

// RegisterFunc receives the migration files selected for dialect.
type RegisterFunc func(ctx context.Context, dialect string, fsys fs.FS) error

// Dialect maps a dialect or database/sql driver name onto DialectPostgres or
// DialectSQLite.
func Dialect(name string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case DialectPostgres, "postgresql", "pg":
		return DialectPostgres, nil
	case DialectSQLite, "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", name)
	}
}

// FS returns the embedded migrations for dialect. Postgres files sit at the
// root of data/sql/migrations, the sqlite variants under sqlite/.
func FS(dialect string) (fs.FS, error) {
	resolved, err := Dialect(dialect)
	if err != nil {
		return nil, err
	}
	dir := migrationsRoot
	if resolved == DialectSQLite {
		dir += "/sqlite"
	}
	sub, err := fs.Sub(stepgate.GetMigrationsFS(), dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", resolved, err)
	}
	matches, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	return sub, nil
}

// Register hands the migrations for dialect to registerFn.
func Register(ctx context.Context, dialect string, registerFn RegisterFunc) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	fsys, err := FS(dialect)
	if err != nil {
		return err
	}
	resolved, _ := Dialect(dialect)
	if err := registerFn(ctx, resolved, fsys); err != nil {
		return fmt.Errorf("migrations: register %s: %w", resolved, err)
	}
	return nil
}
