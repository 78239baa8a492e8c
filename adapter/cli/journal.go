package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
)

var journalReflection string

var journalCmd = &cobra.Command{
	Use:   "journal [reading-id] [notes]",
	Short: "Attach a journal entry to a reading",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		readingID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid reading ID %q", args[0])
		}

		result, err := app.Container.AttachJournalHandler.Handle(cmd.Context(), commands.AttachJournalCommand{
			ReadingID:  readingID,
			UserID:     app.CurrentUserID,
			Notes:      args[1],
			Reflection: journalReflection,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Journal entry %s added\n", result.JournalID)
		return nil
	},
}

func init() {
	journalCmd.Flags().StringVarP(&journalReflection, "reflection", "r", "", "a later reflection on the reading")
}
