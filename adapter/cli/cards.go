package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
)

var cardsCmd = &cobra.Command{
	Use:   "cards [id]",
	Short: "Browse the 78-card deck",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cardID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid card ID %q", args[0])
			}
			card, err := catalog.GetCard(cardID)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", card.Name, card.Arcana)
			fmt.Printf("  keywords: %s\n", strings.Join(card.Keywords, ", "))
			fmt.Printf("  upright:  %s\n", card.Upright)
			fmt.Printf("  reversed: %s\n", card.Reversed)
			return nil
		}

		cards, err := catalog.ListCards()
		if err != nil {
			return err
		}
		for _, card := range cards {
			fmt.Printf("%3d  %s\n", card.ID, card.Name)
		}
		return nil
	},
}

var spreadsCmd = &cobra.Command{
	Use:   "spreads",
	Short: "List available spreads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, spread := range catalog.ListSpreads() {
			fmt.Printf("%-14s %d cards  %s\n", spread.ID, spread.CardCount, spread.Description)
		}
		return nil
	},
}
