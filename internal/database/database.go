package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open abre o banco SQLite em caminho e aplica as migrações pendentes.
func Open(caminho string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", caminho+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err = Migrar(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrar aplica as migrações embutidas no binário.
func Migrar(db *sql.DB) error {
	origem, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("carregar migrações: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("driver de migração: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", origem, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("preparar migrações: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migrações: %w", err)
	}

	versao, _, _ := m.Version()
	slog.Info("Migrações aplicadas", "versao", versao)
	return nil
}
