// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// Setup points goose at the embedded files. logger may be nil.
func Setup(logger *log.Logger) error {
	goose.SetBaseFS(FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("unable to set goose dialect: %w", err)
	}
	return nil
}

func Up(db *sql.DB) error {
	return goose.Up(db, ".")
}

func Down(db *sql.DB) error {
	return goose.Down(db, ".")
}

func Status(db *sql.DB) error {
	return goose.Status(db, ".")
}
