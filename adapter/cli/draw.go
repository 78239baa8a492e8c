package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
	"github.com/Gzeu/tarot-reading-app/internal/readings/application/commands"
	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
)

var (
	drawQuestion string
	drawSeed     int64
)

var drawCmd = &cobra.Command{
	Use:   "draw [spread]",
	Short: "Draw a new reading",
	Long: `Draw a reading using the given spread.

Examples:
  tarot draw daily-card
  tarot draw three-card -q "Should I take the job?"
  tarot draw celtic-cross --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		handler := app.Container.GenerateReadingHandler
		if drawSeed != 0 {
			handler = handler.WithRandSource(func() domain.RandSource {
				return rand.New(rand.NewSource(drawSeed))
			})
		}

		result, err := handler.Handle(cmd.Context(), commands.GenerateReadingCommand{
			UserID:   app.CurrentUserID,
			SpreadID: args[0],
			Question: drawQuestion,
		})
		if err != nil {
			return err
		}

		if result.Existing {
			fmt.Println("Today's card has already been drawn:")
		}
		fmt.Printf("Reading %s (%s)\n", result.ReadingID, result.SpreadID)
		for i, id := range result.CardIDs {
			name := fmt.Sprintf("card %d", id)
			if card, err := catalog.GetCard(id); err == nil {
				name = card.Name
			}
			orientation := "upright"
			if result.Reversed[i] {
				orientation = "reversed"
			}
			position := ""
			if i < len(result.Positions) {
				position = result.Positions[i] + ": "
			}
			fmt.Printf("  %s%s (%s)\n", position, name, orientation)
		}
		fmt.Printf("Streak: %d day(s)\n", result.Streak)
		return nil
	},
}

func init() {
	drawCmd.Flags().StringVarP(&drawQuestion, "question", "q", "", "question to hold in mind")
	drawCmd.Flags().Int64Var(&drawSeed, "seed", 0, "seed for a reproducible draw")
}
