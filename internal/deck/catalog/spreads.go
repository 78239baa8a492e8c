package catalog

import (
	"fmt"

	"github.com/Gzeu/tarot-reading-app/internal/deck/domain"
)

// spreads is the fixed spread catalog, ordered from quick draws to the full
// celtic cross.
var spreads = []domain.Spread{
	{
		ID:          "daily-card",
		Name:        "Daily Card",
		Description: "A single card to set the tone for your day.",
		CardCount:   1,
		Positions:   []string{"Today"},
	},
	{
		ID:          "three-card",
		Name:        "Three Card Spread",
		Description: "Past, present and future in one quick reading.",
		CardCount:   3,
		Positions:   []string{"Past", "Present", "Future"},
	},
	{
		ID:          "career-reading",
		Name:        "Career Reading",
		Description: "Guidance on your professional path.",
		CardCount:   4,
		Positions:   []string{"Current Situation", "Challenge", "Action", "Outcome"},
	},
	{
		ID:          "love-reading",
		Name:        "Love Reading",
		Description: "Insight into a romantic connection.",
		CardCount:   5,
		Positions:   []string{"You", "Partner", "Connection", "Challenge", "Outcome"},
	},
	{
		ID:          "decision-making",
		Name:        "Decision Making",
		Description: "Weigh two options and find guidance.",
		CardCount:   6,
		Positions:   []string{"The Choice", "Option A", "Option B", "What Helps", "What Hinders", "Guidance"},
	},
	{
		ID:          "relationship-spread",
		Name:        "Relationship Spread",
		Description: "A deeper look at the dynamics between two people.",
		CardCount:   7,
		Positions:   []string{"You", "The Other", "The Bond", "Their Feelings", "Your Feelings", "Challenge", "Outcome"},
	},
	{
		ID:          "celtic-cross",
		Name:        "Celtic Cross",
		Description: "The classic ten-card deep dive.",
		CardCount:   10,
		Positions:   []string{"Present", "Challenge", "Past", "Future", "Above", "Below", "Advice", "External", "Hopes", "Outcome"},
	},
}

// GetSpread returns the spread with the given ID.
func GetSpread(id string) (domain.Spread, error) {
	for _, s := range spreads {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Spread{}, fmt.Errorf("spread %q: %w", id, domain.ErrSpreadNotFound)
}

// ListSpreads returns all spreads in catalog order.
func ListSpreads() []domain.Spread {
	out := make([]domain.Spread, len(spreads))
	copy(out, spreads)
	return out
}
