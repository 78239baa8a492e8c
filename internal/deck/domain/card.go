// Package domain holds the deck model: the fixed 78-card tarot deck and the
// spread definitions readings are generated against.
package domain

import "errors"

// Deck and catalog lookup errors.
var (
	ErrCardNotFound   = errors.New("card not found")
	ErrSpreadNotFound = errors.New("spread not found")
)

// DeckSize is the number of cards in a standard tarot deck.
const DeckSize = 78

// Arcana distinguishes major from minor arcana cards.
type Arcana string

const (
	ArcanaMajor Arcana = "major"
	ArcanaMinor Arcana = "minor"
)

// Suit identifies a card's suit. Major arcana cards carry SuitMajor.
type Suit string

const (
	SuitMajor     Suit = "major"
	SuitWands     Suit = "wands"
	SuitCups      Suit = "cups"
	SuitSwords    Suit = "swords"
	SuitPentacles Suit = "pentacles"
)

// Card is one card of the deck. Cards are immutable; IDs are 1-based and
// stable across releases so stored readings keep referencing the same card.
type Card struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Number    int      `json:"number"`
	Suit      Suit     `json:"suit"`
	Arcana    Arcana   `json:"arcana"`
	Meaning   string   `json:"meaning"`
	Upright   string   `json:"upright"`
	Reversed  string   `json:"reversed"`
	Symbolism string   `json:"symbolism"`
	Keywords  []string `json:"keywords"`
	Themes    []string `json:"themes"`
}

// IsMajor returns true for major arcana cards.
func (c Card) IsMajor() bool {
	return c.Arcana == ArcanaMajor
}
