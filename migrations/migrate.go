package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

func Migrate(pgurl string) error {
	migrationDB, err := sql.Open("pgx", pgurl)
	if err != nil {
		return fmt.Errorf("failed to open db for migrations: %w", err)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(migrationDB, "."); err != nil {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	if err := migrationDB.Close(); err != nil {
		return fmt.Errorf("failed to close migration db connection: %w", err)
	}

	return nil
}
