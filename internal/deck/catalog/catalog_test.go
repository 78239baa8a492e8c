package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
	"github.com/Gzeu/tarot-reading-app/internal/deck/domain"
)

func TestListCards_FullDeck(t *testing.T) {
	cards, err := catalog.ListCards()
	require.NoError(t, err)
	require.Len(t, cards, domain.DeckSize)

	// Stable ID order, 1-based, no gaps.
	for i, c := range cards {
		assert.Equal(t, i+1, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Meaning)
	}
}

func TestListCards_ArcanaSplit(t *testing.T) {
	cards, err := catalog.ListCards()
	require.NoError(t, err)

	counts := map[domain.Suit]int{}
	major := 0
	for _, c := range cards {
		if c.IsMajor() {
			major++
		}
		counts[c.Suit]++
	}

	assert.Equal(t, 22, major)
	assert.Equal(t, 14, counts[domain.SuitWands])
	assert.Equal(t, 14, counts[domain.SuitCups])
	assert.Equal(t, 14, counts[domain.SuitSwords])
	assert.Equal(t, 14, counts[domain.SuitPentacles])
}

func TestGetCard(t *testing.T) {
	card, err := catalog.GetCard(1)
	require.NoError(t, err)
	assert.Equal(t, "The Fool", card.Name)
	assert.Equal(t, 0, card.Number)
	assert.True(t, card.IsMajor())

	_, err = catalog.GetCard(79)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = catalog.GetCard(0)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestGetSpread(t *testing.T) {
	spread, err := catalog.GetSpread("celtic-cross")
	require.NoError(t, err)
	assert.Equal(t, 10, spread.CardCount)
	assert.Len(t, spread.Positions, 10)

	_, err = catalog.GetSpread("unknown")
	assert.ErrorIs(t, err, domain.ErrSpreadNotFound)
}

func TestListSpreads_PositionsMatchCardCount(t *testing.T) {
	spreads := catalog.ListSpreads()
	require.NotEmpty(t, spreads)

	for _, s := range spreads {
		assert.Len(t, s.Positions, s.CardCount, "spread %s", s.ID)
		assert.GreaterOrEqual(t, s.CardCount, 1)
		assert.LessOrEqual(t, s.CardCount, domain.DeckSize)
	}
}

func TestListCards_ReturnsCopy(t *testing.T) {
	cards, err := catalog.ListCards()
	require.NoError(t, err)

	cards[0].Name = "mutated"

	again, err := catalog.ListCards()
	require.NoError(t, err)
	assert.Equal(t, "The Fool", again[0].Name)
}
