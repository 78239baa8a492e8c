package domain

import "fmt"

// ProductType distinguishes one-time purchases from subscription plans.
type ProductType string

const (
	ProductOneTime   ProductType = "one_time"
	ProductRecurring ProductType = "recurring"
)

// Product is a purchasable catalog entry. Products are created in the
// processor dashboard and referenced here by ID.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PriceID     string      `json:"priceId"`
	AmountCents int64       `json:"amountCents"`
	Currency    string      `json:"currency"`
	Type        ProductType `json:"type"`
	Interval    string      `json:"interval,omitempty"`
	Features    []string    `json:"features"`
}

// IsRecurring reports whether purchasing the product starts a subscription.
func (p Product) IsRecurring() bool {
	return p.Type == ProductRecurring
}

var products = []Product{
	{
		ID:          "prod_premium_reading",
		Name:        "Premium Reading",
		Description: "Get a detailed tarot reading with extended interpretation",
		PriceID:     "price_premium_reading",
		AmountCents: 999,
		Currency:    "usd",
		Type:        ProductOneTime,
		Features:    []string{"Extended interpretation", "Save to favorites", "Add journal entries", "Email reading summary"},
	},
	{
		ID:          "prod_celtic_cross",
		Name:        "Celtic Cross Reading",
		Description: "Comprehensive 10-card Celtic Cross spread with detailed analysis",
		PriceID:     "price_celtic_cross",
		AmountCents: 1999,
		Currency:    "usd",
		Type:        ProductOneTime,
		Features:    []string{"10-card comprehensive spread", "Detailed position analysis", "PDF export", "Lifetime access"},
	},
	{
		ID:          "prod_love_reading",
		Name:        "Love Reading",
		Description: "5-card relationship and love guidance spread",
		PriceID:     "price_love_reading",
		AmountCents: 1499,
		Currency:    "usd",
		Type:        ProductOneTime,
		Features:    []string{"5-card love spread", "Relationship insights", "Save to favorites", "Journal entry"},
	},
	{
		ID:          "prod_career_reading",
		Name:        "Career Reading",
		Description: "4-card professional guidance and career path spread",
		PriceID:     "price_career_reading",
		AmountCents: 1499,
		Currency:    "usd",
		Type:        ProductOneTime,
		Features:    []string{"4-card career spread", "Professional guidance", "Save to favorites", "Journal entry"},
	},
	{
		ID:          "prod_starter_plan",
		Name:        "Starter Plan",
		Description: "Perfect for casual tarot enthusiasts",
		PriceID:     "price_starter_monthly",
		AmountCents: 999,
		Currency:    "usd",
		Type:        ProductRecurring,
		Interval:    "month",
		Features:    []string{"3 readings per month", "Save favorites", "Journal entries", "Email support"},
	},
	{
		ID:          "prod_pro_plan",
		Name:        "Pro Plan",
		Description: "For serious tarot practitioners",
		PriceID:     "price_pro_monthly",
		AmountCents: 1999,
		Currency:    "usd",
		Type:        ProductRecurring,
		Interval:    "month",
		Features:    []string{"Unlimited readings", "All spread types", "PDF exports", "Reading analytics", "Priority support"},
	},
	{
		ID:          "prod_premium_plan",
		Name:        "Premium Plan",
		Description: "Complete tarot mastery experience",
		PriceID:     "price_premium_monthly",
		AmountCents: 2999,
		Currency:    "usd",
		Type:        ProductRecurring,
		Interval:    "month",
		Features:    []string{"Unlimited readings", "All spread types", "Custom spreads", "Community access", "Priority support"},
	},
	{
		ID:          "prod_yearly_plan",
		Name:        "Premium Yearly",
		Description: "Best value - save 20% with annual billing",
		PriceID:     "price_premium_yearly",
		AmountCents: 28788,
		Currency:    "usd",
		Type:        ProductRecurring,
		Interval:    "year",
		Features:    []string{"Unlimited readings", "All spread types", "Custom spreads", "Community access", "20% savings vs monthly"},
	},
}

// GetProduct returns the product with the given ID.
func GetProduct(id string) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("product %q: %w", id, ErrProductNotFound)
}

// GetProductByPriceID returns the product carrying the given price ID.
func GetProductByPriceID(priceID string) (Product, error) {
	for _, p := range products {
		if p.PriceID == priceID {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("price %q: %w", priceID, ErrProductNotFound)
}

// ListProducts returns the full catalog.
func ListProducts() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
