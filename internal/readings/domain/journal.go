package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	shared "github.com/Gzeu/tarot-reading-app/internal/shared/domain"
)

// ErrEmptyJournal is returned when a journal entry has no notes.
var ErrEmptyJournal = errors.New("journal entry requires notes")

// JournalEntry is free-text reflection attached to one reading. Entries are
// deleted with their reading (cascade).
type JournalEntry struct {
	shared.BaseEntity
	readingID  uuid.UUID
	notes      string
	reflection string
}

// NewJournalEntry creates a journal entry.
func NewJournalEntry(readingID uuid.UUID, notes, reflection string) (*JournalEntry, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, ErrEmptyJournal
	}
	return &JournalEntry{
		BaseEntity: shared.NewBaseEntity(),
		readingID:  readingID,
		notes:      notes,
		reflection: strings.TrimSpace(reflection),
	}, nil
}

// RehydrateJournalEntry recreates an entry from persisted state.
func RehydrateJournalEntry(id, readingID uuid.UUID, notes, reflection string, createdAt, updatedAt time.Time) *JournalEntry {
	return &JournalEntry{
		BaseEntity: shared.RehydrateBaseEntity(id, createdAt, updatedAt),
		readingID:  readingID,
		notes:      notes,
		reflection: reflection,
	}
}

func (j *JournalEntry) ReadingID() uuid.UUID { return j.readingID }
func (j *JournalEntry) Notes() string        { return j.notes }
func (j *JournalEntry) Reflection() string   { return j.reflection }
