// Package migrations embeds the schema files and applies them at startup.
// Statements are idempotent (CREATE ... IF NOT EXISTS) so the runner can
// execute on every boot without tracking versions.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFS embed.FS

// Run applies all migrations for the connection's driver in order.
func Run(ctx context.Context, conn database.Connection) error {
	dir := string(conn.Driver())

	statements, err := loadStatements(dir)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	return nil
}

// RunSQLiteDB applies the SQLite migrations to a raw database handle.
// Used by persistence tests that open in-memory databases directly.
func RunSQLiteDB(ctx context.Context, db *sql.DB) error {
	statements, err := loadStatements("sqlite")
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	return nil
}

func loadStatements(dir string) ([]string, error) {
	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	var statements []string
	for _, file := range upFiles {
		migration, err := migrationFS.ReadFile(dir + "/" + file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		statements = append(statements, splitStatements(string(migration))...)
	}

	return statements, nil
}

// splitStatements breaks a migration file into individual statements so that
// drivers restricted to one statement per Exec can run them. Comment lines
// are stripped first; a semicolon inside a comment must not split.
func splitStatements(migration string) []string {
	var sql strings.Builder
	for _, line := range strings.Split(migration, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		sql.WriteString(line)
		sql.WriteByte('\n')
	}

	var statements []string
	for _, stmt := range strings.Split(sql.String(), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
