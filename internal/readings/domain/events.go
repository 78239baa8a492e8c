package domain

import (
	"github.com/google/uuid"

	shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// ReadingGenerated is emitted when a reading is created.
type ReadingGenerated struct {
	shared.BaseEvent
	UserID   uuid.UUID `json:"userId"`
	SpreadID string    `json:"spreadId"`
	CardIDs  []int     `json:"cardIds"`
}

// NewReadingGenerated creates the generation event.
func NewReadingGenerated(r *Reading) ReadingGenerated {
	return ReadingGenerated{
		BaseEvent: shared.NewBaseEvent(r.ID(), "reading", "readings.reading.generated"),
		UserID:    r.UserID(),
		SpreadID:  r.SpreadID(),
		CardIDs:   r.CardIDs(),
	}
}

// JournalAttached is emitted when a journal entry is added to a reading.
type JournalAttached struct {
	shared.BaseEvent
	UserID    uuid.UUID `json:"userId"`
	JournalID uuid.UUID `json:"journalId"`
}

// NewJournalAttached creates the journal event.
func NewJournalAttached(r *Reading, entry *JournalEntry) JournalAttached {
	return JournalAttached{
		BaseEvent: shared.NewBaseEvent(r.ID(), "reading", "readings.journal.attached"),
		UserID:    r.UserID(),
		JournalID: entry.ID(),
	}
}
