package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
)

var favoriteOff bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite [reading-id]",
	Short: "Mark a reading as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		readingID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid reading ID %q", args[0])
		}

		err = app.Container.SetFavoriteHandler.Handle(cmd.Context(), commands.SetFavoriteCommand{
			ReadingID: readingID,
			UserID:    app.CurrentUserID,
			Favorite:  !favoriteOff,
		})
		if err != nil {
			return err
		}

		if favoriteOff {
			fmt.Println("Favorite removed")
		} else {
			fmt.Println("Marked as favorite")
		}
		return nil
	},
}

func init() {
	favoriteCmd.Flags().BoolVar(&favoriteOff, "off", false, "remove the favorite mark")
}
