package migration

import (
	"errors"
	"fmt"
	"strings"

	"gradebook/internal/app/server/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator is the part of *migrate.Migrate the marks schema setup uses.
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine opens a Migrator for a source and a database URL.
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	cfg    config.DB
	engine MigrationEngine
}

// NewMigration applies the SQL files under cfg.Migrations; a nil engine
// means DefaultEngine.
func NewMigration(cfg config.DB, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		cfg:    cfg,
		engine: engine,
	}
}

// DefaultEngine opens a real golang-migrate instance.
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// sourceURL accepts a bare directory or any golang-migrate source URL.
func (mg *Migration) sourceURL() string {
	if strings.Contains(mg.cfg.Migrations, "://") {
		return mg.cfg.Migrations
	}
	return "file://" + mg.cfg.Migrations
}

// Up migrates to the latest version. An up-to-date schema is not an error.
func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.sourceURL(), mg.cfg.DatabaseURI)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database: %w", dberr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
