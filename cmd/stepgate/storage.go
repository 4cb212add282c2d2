package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-stepgate/core"
	gatewaymigrations "github.com/goliatone/go-stepgate/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const pingTimeout = 5 * time.Second

type persistenceConfig struct {
	driver string
	dsn    string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool                { return c.debug }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.dsn }
func (c persistenceConfig) GetPingTimeout() time.Duration { return pingTimeout }
func (c persistenceConfig) GetOtelIdentifier() string     { return "go-stepgate" }

// openPersistence opens the database named by the storage section. The
// memory driver has no database and is rejected.
func openPersistence(cfg core.Config, debug bool) (*persistence.Client, string, error) {
	switch cfg.StorageDriver() {
	case core.StorageDriverSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.Storage.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		client, err := persistence.New(persistenceConfig{driver: "sqlite3", dsn: cfg.Storage.DSN, debug: debug}, sqlDB, sqlitedialect.New())
		if err != nil {
			_ = sqlDB.Close()
			return nil, "", fmt.Errorf("storage: sqlite client: %w", err)
		}
		return client, gatewaymigrations.DialectSQLite, nil
	case core.StorageDriverPostgres:
		sqlDB, err := sql.Open("postgres", cfg.Storage.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("storage: open postgres: %w", err)
		}
		client, err := persistence.New(persistenceConfig{driver: "postgres", dsn: cfg.Storage.DSN, debug: debug}, sqlDB, pgdialect.New())
		if err != nil {
			_ = sqlDB.Close()
			return nil, "", fmt.Errorf("storage: postgres client: %w", err)
		}
		return client, gatewaymigrations.DialectPostgres, nil
	}
	return nil, "", fmt.Errorf("storage: driver %q has no database", cfg.StorageDriver())
}

// migrate registers the embedded migrations for dialect and applies them.
func migrate(ctx context.Context, client *persistence.Client, dialect string) error {
	err := gatewaymigrations.Register(ctx, dialect, func(_ context.Context, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	})
	if err != nil {
		return err
	}
	return client.Migrate(ctx)
}
