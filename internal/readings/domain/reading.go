package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	deck "github.com/Gzeu/tarot-reading-app/internal/deck/domain"
	shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// Reading is the aggregate for one generated reading. Card order is fixed
// at creation: drawn card i maps to spread position i forever.
type Reading struct {
	shared.BaseAggregateRoot
	userID         uuid.UUID
	spreadID       string
	question       string
	cardIDs        []int
	reversed       []bool
	interpretation string
	favorite       bool
	readingDate    string // YYYY-MM-DD in the reference location
	journal        []*JournalEntry
}

// NewReading creates a reading from a draw. The draw must match the spread.
func NewReading(userID uuid.UUID, spread deck.Spread, question string, draw Draw, readingDate string) (*Reading, error) {
	if len(draw.CardIDs) != spread.CardCount || len(draw.Reversed) != spread.CardCount {
		return nil, fmt.Errorf("draw has %d cards and %d flags for a %d-card spread: %w",
			len(draw.CardIDs), len(draw.Reversed), spread.CardCount, ErrInvalidSpread)
	}
	seen := make(map[int]bool, len(draw.CardIDs))
	for _, id := range draw.CardIDs {
		if id < 1 || id > deck.DeckSize {
			return nil, fmt.Errorf("card id %d out of range: %w", id, ErrInvalidSpread)
		}
		if seen[id] {
			return nil, fmt.Errorf("card %d drawn twice: %w", id, ErrInvalidSpread)
		}
		seen[id] = true
	}

	reading := &Reading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		userID:            userID,
		spreadID:          spread.ID,
		question:          strings.TrimSpace(question),
		cardIDs:           draw.CardIDs,
		reversed:          draw.Reversed,
		readingDate:       readingDate,
	}

	reading.AddDomainEvent(NewReadingGenerated(reading))

	return reading, nil
}

// RehydrateReading recreates a reading from persisted state.
func RehydrateReading(
	id uuid.UUID,
	userID uuid.UUID,
	spreadID, question string,
	cardIDs []int,
	reversed []bool,
	interpretation string,
	favorite bool,
	readingDate string,
	createdAt, updatedAt time.Time,
) *Reading {
	return &Reading{
		BaseAggregateRoot: shared.RehydrateBaseAggregateRoot(
			shared.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		userID:         userID,
		spreadID:       spreadID,
		question:       question,
		cardIDs:        cardIDs,
		reversed:       reversed,
		interpretation: interpretation,
		favorite:       favorite,
		readingDate:    readingDate,
	}
}

func (r *Reading) UserID() uuid.UUID        { return r.userID }
func (r *Reading) SpreadID() string         { return r.spreadID }
func (r *Reading) Question() string         { return r.question }
func (r *Reading) Interpretation() string   { return r.interpretation }
func (r *Reading) IsFavorite() bool         { return r.favorite }
func (r *Reading) ReadingDate() string      { return r.readingDate }
func (r *Reading) Journal() []*JournalEntry { return r.journal }

// CardIDs returns the drawn card IDs in position order.
func (r *Reading) CardIDs() []int {
	out := make([]int, len(r.cardIDs))
	copy(out, r.cardIDs)
	return out
}

// Reversed returns the orientation flags in position order.
func (r *Reading) Reversed() []bool {
	out := make([]bool, len(r.reversed))
	copy(out, r.reversed)
	return out
}

// SetFavorite toggles the favorite flag.
func (r *Reading) SetFavorite(favorite bool) {
	if r.favorite != favorite {
		r.favorite = favorite
		r.Touch()
	}
}

// SetInterpretation attaches interpretation prose. Empty input is ignored
// so a failed interpretation collaborator never blanks an existing text.
func (r *Reading) SetInterpretation(text string) {
	text = strings.TrimSpace(text)
	if text != "" {
		r.interpretation = text
		r.Touch()
	}
}

// AttachJournal adds a journal entry to the reading.
func (r *Reading) AttachJournal(notes, reflection string) (*JournalEntry, error) {
	entry, err := NewJournalEntry(r.ID(), notes, reflection)
	if err != nil {
		return nil, err
	}
	r.journal = append(r.journal, entry)
	r.Touch()
	r.AddDomainEvent(NewJournalAttached(r, entry))
	return entry, nil
}

// AddRehydratedJournal appends a persisted journal entry without touching
// timestamps or emitting events.
func (r *Reading) AddRehydratedJournal(entry *JournalEntry) {
	r.journal = append(r.journal, entry)
}
