package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import required for PostgreSQL driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/exp/slog"

	"lunasync/internal/app/server/config"
)

// Migrator часть migrate.Migrate, нужная для наката схемы
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// MigrationEngine — фабрика для создания мигратора (чтобы не лезть в ФС и БД в тестах)
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	cfg    config.DB
	engine MigrationEngine
	log    *slog.Logger
}

func NewMigration(conf config.DB, engine MigrationEngine, log *slog.Logger) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		cfg:    conf,
		engine: engine,
		log:    log.With(slog.String("component", "migration")),
	}
}

// DefaultEngine — реальная реализация для продакшена
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up накатывает недостающие миграции таблицы documents и возвращает версию
// схемы. Схема в состоянии dirty (прерванная миграция) считается ошибкой.
func (mg *Migration) Up() (version uint, err error) {
	if mg.cfg.Migrations == "" {
		return 0, errors.New("migrations path is empty")
	}

	m, err := mg.engine("file://"+mg.cfg.Migrations, mg.cfg.DatabaseURI)
	if err != nil {
		return 0, fmt.Errorf("open migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		err = errors.Join(err, closeErr("source", srcErr), closeErr("database", dbErr))
	}()

	switch upErr := m.Up(); {
	case errors.Is(upErr, migrate.ErrNoChange):
		mg.log.Debug("schema is up to date")
	case upErr != nil:
		return 0, fmt.Errorf("migration up: %w", upErr)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migration version: %w", err)
	case dirty:
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	mg.log.Info("schema migrated", "version", version)
	return version, nil
}

func closeErr(side string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("migration %s error: %w", side, err)
}
