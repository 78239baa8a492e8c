package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	t.Run("semicolon inside a comment does not split", func(t *testing.T) {
		migration := "-- Timestamps are RFC3339 TEXT; dates as YYYY-MM-DD.\n" +
			"CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY);\n" +
			"CREATE TABLE IF NOT EXISTS readings (id TEXT PRIMARY KEY);\n"

		statements := splitStatements(migration)

		assert.Equal(t, []string{
			"CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY)",
			"CREATE TABLE IF NOT EXISTS readings (id TEXT PRIMARY KEY)",
		}, statements)
	})

	t.Run("comment-only input yields no statements", func(t *testing.T) {
		assert.Empty(t, splitStatements("-- nothing here\n-- still nothing\n"))
	})
}
