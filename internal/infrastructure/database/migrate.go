package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	iofs "github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/support-api/migrations"
)

const migrationsTable = "schema_migrations"

// Migrate applies all pending SQL migrations bundled for the driver.
func Migrate(ctx context.Context, gormDB *gorm.DB, cfg Config, log zerolog.Logger) (err error) {
	dir := cfg.Driver
	if dir == "" {
		dir = DriverPostgres
	}

	entries, err := fs.ReadDir(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("read migration directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			log.Debug().Str("file", entry.Name()).Msg("found migration file")
		}
	}

	driver, err := migrationDriver(ctx, gormDB, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := driver.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration connection: %w", closeErr)
		}
	}()

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer func() {
		if closeErr := source.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration source: %w", closeErr)
		}
	}()

	migrator, err := migrate.NewWithInstance("iofs", source, dir, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	version, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("no migrations have been applied yet")
	case err != nil:
		log.Warn().Err(err).Msg("error getting migration version")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration state")
	}

	if dirty {
		log.Warn().Uint("version", version).Msg("database is in dirty state, forcing version")
		if forceErr := migrator.Force(int(version)); forceErr != nil {
			return fmt.Errorf("force version %d to clear dirty state: %w", version, forceErr)
		}
	}

	if err := migrator.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info().Msg("database schema up to date")
		return nil
	}

	if finalVersion, _, versionErr := migrator.Version(); versionErr == nil {
		log.Info().Uint("version", finalVersion).Msg("migrations applied")
	}
	return nil
}

func migrationDriver(ctx context.Context, gormDB *gorm.DB, cfg Config) (migratedb.Driver, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("retrieve sql db: %w", err)
		}
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire dedicated connection: %w", err)
		}
		driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{MigrationsTable: migrationsTable})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("initialize postgres driver: %w", err)
		}
		return driver, nil

	case DriverSQLite:
		if strings.HasPrefix(cfg.DSN, ":memory:") || strings.Contains(cfg.DSN, "mode=memory") {
			return nil, fmt.Errorf("in-memory sqlite cannot be migrated; use DB_DRIVER=memory instead")
		}
		// The sqlite3 driver closes the *sql.DB it is given, so it gets its own handle.
		sqlDB, err := sql.Open("sqlite3", sqliteDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("open sqlite for migrations: %w", err)
		}
		driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{MigrationsTable: migrationsTable})
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("initialize sqlite driver: %w", err)
		}
		return driver, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
