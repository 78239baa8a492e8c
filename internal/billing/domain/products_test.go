package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/billing/domain"
)

func TestGetProduct(t *testing.T) {
	p, err := domain.GetProduct("prod_pro_plan")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), p.AmountCents)
	assert.True(t, p.IsRecurring())
	assert.Equal(t, "month", p.Interval)

	p, err = domain.GetProduct("prod_celtic_cross")
	require.NoError(t, err)
	assert.False(t, p.IsRecurring())

	_, err = domain.GetProduct("prod_missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProductByPriceID(t *testing.T) {
	p, err := domain.GetProductByPriceID("price_premium_yearly")
	require.NoError(t, err)
	assert.Equal(t, "prod_yearly_plan", p.ID)
	assert.Equal(t, "year", p.Interval)

	_, err = domain.GetProductByPriceID("price_missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListProducts(t *testing.T) {
	all := domain.ListProducts()
	require.Len(t, all, 8)

	recurring := 0
	for _, p := range all {
		assert.NotEmpty(t, p.PriceID)
		assert.Greater(t, p.AmountCents, int64(0))
		if p.IsRecurring() {
			recurring++
			assert.NotEmpty(t, p.Interval)
		}
	}
	assert.Equal(t, 4, recurring)
}
