package model

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ItemCategory links an Item to a Category. The pair is unique.
type ItemCategory struct {
	ItemID     int64 `json:"item_id"`
	CategoryID int64 `json:"category_id"`
}
