// Package domain holds the reading aggregate and the draw algorithm.
package domain

import (
	"errors"
	"fmt"

	deck "github.com/Gzeu/tarot-reading-app/internal/deck/domain"
)

// Reading errors.
var (
	ErrInvalidSpread   = errors.New("invalid spread")
	ErrReadingNotFound = errors.New("reading not found")
	ErrJournalNotFound = errors.New("journal entry not found")
)

// RandSource provides the randomness for a draw. *math/rand.Rand satisfies
// it; tests inject scripted sources for exact-output assertions.
type RandSource interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Draw is the outcome of sampling a spread: drawn card IDs in position
// order and a parallel reversed flag per card.
type Draw struct {
	CardIDs  []int
	Reversed []bool
}

// DrawCards produces an unbiased draw for the spread: a Fisher-Yates
// permutation of the full deck, truncated to the spread's card count, with
// an independent fair coin per drawn card for orientation. Uniform over all
// ordered k-subsets, so no card repeats within one reading.
func DrawCards(spread deck.Spread, rng RandSource) (Draw, error) {
	count := spread.CardCount
	if count < 1 || count > deck.DeckSize {
		return Draw{}, fmt.Errorf("spread %q needs %d cards from a %d-card deck: %w",
			spread.ID, count, deck.DeckSize, ErrInvalidSpread)
	}

	ids := make([]int, deck.DeckSize)
	for i := range ids {
		ids[i] = i + 1
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}

	cardIDs := make([]int, count)
	copy(cardIDs, ids[:count])

	reversed := make([]bool, count)
	for i := range reversed {
		reversed[i] = rng.Intn(2) == 1
	}

	return Draw{CardIDs: cardIDs, Reversed: reversed}, nil
}
