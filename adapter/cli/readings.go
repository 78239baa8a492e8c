package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/readings/application/queries"
)

var (
	listLimit  int
	listOffset int
)

var readingsCmd = &cobra.Command{
	Use:   "readings [id]",
	Short: "List past readings, or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if len(args) == 1 {
			return showReading(cmd, app, args[0])
		}

		views, err := app.Container.ListReadingsHandler.Handle(cmd.Context(), queries.ListReadingsQuery{
			UserID: app.CurrentUserID,
			Limit:  listLimit,
			Offset: listOffset,
		})
		if err != nil {
			return err
		}

		if len(views) == 0 {
			fmt.Println("No readings yet. Try: tarot draw daily-card")
			return nil
		}
		for _, view := range views {
			marker := " "
			if view.Favorite {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s", marker, view.CreatedAt.Format("2006-01-02"), view.ID, view.SpreadName)
			if view.Question != "" {
				fmt.Printf("  %q", view.Question)
			}
			fmt.Println()
		}
		return nil
	},
}

func showReading(cmd *cobra.Command, app *App, rawID string) error {
	readingID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid reading ID %q", rawID)
	}

	view, err := app.Container.GetReadingHandler.Handle(cmd.Context(), queries.GetReadingQuery{
		ReadingID: readingID,
		UserID:    app.CurrentUserID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s drawn %s\n", view.SpreadName, view.CreatedAt.Format("2006-01-02 15:04"))
	if view.Question != "" {
		fmt.Printf("Question: %s\n", view.Question)
	}
	for _, card := range view.Cards {
		orientation := "upright"
		if card.Reversed {
			orientation = "reversed"
		}
		fmt.Printf("  %s: %s (%s)\n", card.Position, card.Name, orientation)
		if card.Meaning != "" {
			fmt.Printf("    %s\n", card.Meaning)
		}
	}
	if view.Interpretation != "" {
		fmt.Printf("\n%s\n", view.Interpretation)
	}
	for _, entry := range view.Journal {
		fmt.Printf("\nJournal (%s):\n  %s\n", entry.CreatedAt.Format("2006-01-02"), entry.Notes)
		if entry.Reflection != "" {
			fmt.Printf("  Reflection: %s\n", entry.Reflection)
		}
	}
	return nil
}

func init() {
	readingsCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "number of readings to list")
	readingsCmd.Flags().IntVar(&listOffset, "offset", 0, "offset into the list")
}
