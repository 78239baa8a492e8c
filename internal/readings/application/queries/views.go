// Package queries holds the read-side handlers for readings.
package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
)

// CardView is one drawn card resolved against the catalog.
type CardView struct {
	CardID   int    `json:"cardId"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Reversed bool   `json:"reversed"`
	Meaning  string `json:"meaning"`
}

// JournalView is one journal entry of a reading.
type JournalView struct {
	ID         uuid.UUID `json:"id"`
	Notes      string    `json:"notes"`
	Reflection string    `json:"reflection,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReadingView is the API shape of a reading.
type ReadingView struct {
	ID             uuid.UUID     `json:"id"`
	SpreadID       string        `json:"spreadId"`
	SpreadName     string        `json:"spreadName"`
	Question       string        `json:"question,omitempty"`
	Cards          []CardView    `json:"cards"`
	Interpretation string        `json:"interpretation,omitempty"`
	Favorite       bool          `json:"favorite"`
	Journal        []JournalView `json:"journal,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// NewReadingView resolves a reading against the spread and card catalogs.
// Position labels beyond the spread definition fall back to empty strings
// rather than failing the whole view.
func NewReadingView(reading *domain.Reading) ReadingView {
	view := ReadingView{
		ID:             reading.ID(),
		SpreadID:       reading.SpreadID(),
		Question:       reading.Question(),
		Interpretation: reading.Interpretation(),
		Favorite:       reading.IsFavorite(),
		CreatedAt:      reading.CreatedAt(),
	}

	var positions []string
	if spread, err := catalog.GetSpread(reading.SpreadID()); err == nil {
		view.SpreadName = spread.Name
		positions = spread.Positions
	}

	cardIDs := reading.CardIDs()
	reversed := reading.Reversed()
	view.Cards = make([]CardView, len(cardIDs))
	for i, id := range cardIDs {
		cv := CardView{CardID: id, Reversed: reversed[i]}
		if i < len(positions) {
			cv.Position = positions[i]
		}
		if card, err := catalog.GetCard(id); err == nil {
			cv.Name = card.Name
			if reversed[i] {
				cv.Meaning = card.Reversed
			} else {
				cv.Meaning = card.Upright
			}
		}
		view.Cards[i] = cv
	}

	for _, entry := range reading.Journal() {
		view.Journal = append(view.Journal, JournalView{
			ID:         entry.ID(),
			Notes:      entry.Notes(),
			Reflection: entry.Reflection(),
			CreatedAt:  entry.CreatedAt(),
		})
	}

	return view
}
