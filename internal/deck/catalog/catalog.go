// Package catalog serves the embedded deck and the spread definitions. The
// deck JSON is parsed once on first use and shared read-only afterwards.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Gzeu/tarot-reading-app/internal/deck/domain"
)

//go:embed deck.json
var deckFS embed.FS

var (
	loadOnce sync.Once
	loadErr  error
	cards    []domain.Card
	cardByID map[int]domain.Card
)

func load() error {
	loadOnce.Do(func() {
		data, err := deckFS.ReadFile("deck.json")
		if err != nil {
			loadErr = fmt.Errorf("failed to read embedded deck: %w", err)
			return
		}

		var parsed []domain.Card
		if err := json.Unmarshal(data, &parsed); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded deck: %w", err)
			return
		}
		if len(parsed) != domain.DeckSize {
			loadErr = fmt.Errorf("embedded deck has %d cards, want %d", len(parsed), domain.DeckSize)
			return
		}

		sort.Slice(parsed, func(i, j int) bool { return parsed[i].ID < parsed[j].ID })

		byID := make(map[int]domain.Card, len(parsed))
		for _, c := range parsed {
			byID[c.ID] = c
		}

		cards = parsed
		cardByID = byID
	})
	return loadErr
}

// GetCard returns the card with the given ID.
func GetCard(id int) (domain.Card, error) {
	if err := load(); err != nil {
		return domain.Card{}, err
	}
	card, ok := cardByID[id]
	if !ok {
		return domain.Card{}, fmt.Errorf("card %d: %w", id, domain.ErrCardNotFound)
	}
	return card, nil
}

// ListCards returns all cards in stable ID order. The returned slice is a
// copy; callers may not mutate the catalog.
func ListCards() ([]domain.Card, error) {
	if err := load(); err != nil {
		return nil, err
	}
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	return out, nil
}
