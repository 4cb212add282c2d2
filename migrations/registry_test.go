package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	stepgate "github.com/goliatone/go-stepgate"
	_ "github.com/mattn/go-sqlite3"
)

func TestFS_SelectsDialectDirectory(t *testing.T) {
	cases := map[string]string{
		DialectPostgres: "postgres",
		"postgresql":    "postgres",
		"sqlite3":       "sqlite",
		DialectSQLite:   "sqlite",
	}
	for name, marker := range cases {
		t.Run(name, func(t *testing.T) {
			fsys, err := FS(name)
			if err != nil {
				t.Fatalf("fs: %v", err)
			}
			content, err := fs.ReadFile(fsys, "00001_gateway_storage.up.sql")
			if err != nil {
				t.Fatalf("read up migration: %v", err)
			}
			if strings.TrimSpace(string(content)) == "" {
				t.Fatalf("expected %s migration content", marker)
			}
			if _, err := fs.Stat(fsys, "sqlite"); (err == nil) != (marker == "postgres") {
				t.Fatalf("expected %s root, stat sqlite dir err=%v", marker, err)
			}
		})
	}

	if _, err := FS("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect to fail")
	}
}

func TestRegister_PassesResolvedDialect(t *testing.T) {
	var calls []string
	err := Register(context.Background(), "sqlite3", func(_ context.Context, dialect string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(calls) != 1 || calls[0] != DialectSQLite {
		t.Fatalf("expected one sqlite registration, got %v", calls)
	}

	if err := Register(context.Background(), DialectSQLite, nil); err == nil {
		t.Fatalf("expected nil register function to fail")
	}
	failing := func(context.Context, string, fs.FS) error { return fmt.Errorf("boom") }
	if err := Register(context.Background(), DialectPostgres, failing); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected register error to surface, got %v", err)
	}
}

func TestGatewayStorageMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := stepgate.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_gateway_storage.up.sql",
		"data/sql/migrations/00001_gateway_storage.down.sql",
		"data/sql/migrations/sqlite/00001_gateway_storage.up.sql",
		"data/sql/migrations/sqlite/00001_gateway_storage.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteGatewayStorageMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-gateway-storage?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	sqliteMigrations, err := fs.Sub(stepgate.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_gateway_storage.up.sql"); err != nil {
		t.Fatalf("apply migration up: %v", err)
	}

	insertAccount := `INSERT INTO gateway_accounts (id, username, email, password_hash) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertAccount, "a1", "u1", "e@x.com", "hash"); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertAccount, "a2", "u1", "e@x.com", "hash"); err == nil {
		t.Fatalf("expected unique username violation")
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO gateway_blobs (object_key, body, content_type) VALUES (?, ?, ?)`, "u1/p1/StepTree.json", []byte(`{}`), "application/json"); err != nil {
		t.Fatalf("insert blob: %v", err)
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_gateway_storage.down.sql"); err != nil {
		t.Fatalf("apply migration down: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('gateway_blobs', 'gateway_accounts')`,
	).Scan(&count); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected tables dropped, found %d", count)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
