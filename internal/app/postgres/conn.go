// Package postgres implements the stores of the builds and the promotions.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
)

//go:embed schema.sql
var schema string

// Open connects to the database using the pgx driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.Open.ParseConfig"})
	}
	db := stdlib.OpenDB(*cfg)
	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "postgres.Open.Ping",
			Params: errors.Params{"host": cfg.Host, "db": cfg.Database},
		})
	}
	return db, nil
}

// Migrate creates the tables unless they exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.WrapContext(err, errors.Context{Path: "postgres.Migrate.Exec"})
}
