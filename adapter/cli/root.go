// Package cli implements the tarot command line client. It runs against a
// local SQLite database so a terminal user needs no services at all.
package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/app"
)

// App holds the CLI application dependencies.
type App struct {
	Container *app.Container

	// CurrentUserID is the local user every CLI command acts as.
	CurrentUserID uuid.UUID
}

var globalApp *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	globalApp = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return globalApp
}

// RootCmd is the root of the CLI command tree.
var RootCmd = &cobra.Command{
	Use:   "tarot",
	Short: "Tarot readings in your terminal",
	Long: `Draw tarot readings, keep a journal and track your streak.

Data is stored locally in SQLite; no account or server is needed.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(drawCmd)
	RootCmd.AddCommand(readingsCmd)
	RootCmd.AddCommand(journalCmd)
	RootCmd.AddCommand(favoriteCmd)
	RootCmd.AddCommand(cardsCmd)
	RootCmd.AddCommand(spreadsCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(productsCmd)
}
