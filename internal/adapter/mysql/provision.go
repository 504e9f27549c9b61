package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/pressly/goose"
	"github.com/sm8ta/users_crud_service/internal/config"
)

const (
	charset   = "utf8mb4"
	collation = "utf8mb4_general_ci"

	statementBegin = "-- +goose StatementBegin"
	statementEnd   = "-- +goose StatementEnd"
)

//go:embed migrations/00001_create_users_table.sql
var createUsersMigration string

// Execer is the subset of *sql.DB (and Pool) needed to run DDL.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OpenServer connects without selecting a database.
func OpenServer(cfg *config.DB) (*sql.DB, error) {
	db, err := sql.Open(driverName, FormatDSN(cfg, false))
	if err != nil {
		return nil, fmt.Errorf("mysql.OpenServer: %w", err)
	}
	return db, nil
}

// CreateDatabase creates the schema if it does not exist yet.
func CreateDatabase(ctx context.Context, db Execer, name string) error {
	const op = "mysql.CreateDatabase"

	if name == "" {
		return fmt.Errorf("%s: empty database name", op)
	}
	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET %s COLLATE %s",
		quoteIdent(name), charset, collation)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateUsersTable runs the users DDL, which is a no-op if the table exists.
func CreateUsersTable(ctx context.Context, db Execer) error {
	const op = "mysql.CreateUsersTable"

	ddl, err := CreateUsersTableDDL()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateUsersTableDDL returns the Up statement of the first migration.
func CreateUsersTableDDL() (string, error) {
	begin := strings.Index(createUsersMigration, statementBegin)
	end := strings.Index(createUsersMigration, statementEnd)
	if begin < 0 || end < begin {
		return "", fmt.Errorf("malformed users migration")
	}
	return strings.TrimSpace(createUsersMigration[begin+len(statementBegin) : end]), nil
}

// Migrate applies the goose migrations found in dir.
func Migrate(db *sql.DB, dir string) error {
	const op = "mysql.Migrate"

	if err := goose.SetDialect(driverName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
