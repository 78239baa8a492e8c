package domain

// Spread describes a reading layout: how many cards are drawn and what each
// position means.
type Spread struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CardCount   int      `json:"cardCount"`
	Positions   []string `json:"positions"`
}
