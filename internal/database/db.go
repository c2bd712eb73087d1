package database

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
)

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection.
func Open(ctx context.Context, uri string) (db *bun.DB, err error) {
	var dbConfig *pgx.ConnConfig
	if dbConfig, err = pgx.ParseConfig(uri); err != nil {
		err = fmt.Errorf("unable to parse postgres uri: %w", err)
		return
	}

	sqldb := stdlib.OpenDB(*dbConfig)
	db = bun.NewDB(sqldb, pgdialect.New())

	if _, err = db.ExecContext(ctx, "SELECT 1"); err != nil {
		_ = db.Close()
		db = nil
		err = fmt.Errorf("failed to test database connection: %w", err)
	}
	return
}

// LogQueries writes every executed query to w.
func LogQueries(db *bun.DB, w io.Writer) {
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.WithWriter(w),
	))
}
