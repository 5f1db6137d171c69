package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one line of a shopping list. UnitPrice is stored as a REAL, so it
// is limited to values a float64 holds exactly in shortest form (about 15
// significant digits); the store rejects anything else.
type Item struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ShoppingListID *int64          `json:"shopping_list_id"`
	CreatedAt      *time.Time      `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at"`
}

// Total is UnitPrice times Quantity.
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
