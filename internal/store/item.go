package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/shoplist/internal/model"
)

const itemsTable = "items"

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemFilter matches items on every non-nil field. Unlisted selects items
// whose shopping_list_id is NULL and overrides ShoppingListID.
type ItemFilter struct {
	ID             *int64
	Name           *string
	ShoppingListID *int64
	Unlisted       bool
	Page
}

func (f ItemFilter) where() sq.Eq {
	eq := sq.Eq{}
	if f.ID != nil {
		eq["id"] = *f.ID
	}
	if f.Name != nil {
		eq["name"] = *f.Name
	}
	if f.ShoppingListID != nil {
		eq["shopping_list_id"] = *f.ShoppingListID
	}
	if f.Unlisted {
		eq["shopping_list_id"] = nil
	}
	return eq
}

// ItemPatch holds the fields to change. The Clear flags write NULL and win
// over the matching value field.
type ItemPatch struct {
	Name                *string
	Description         *string
	ClearDescription    bool
	Quantity            *int
	UnitPrice           *decimal.Decimal
	ShoppingListID      *int64
	ClearShoppingListID bool
	UpdatedAt           *time.Time
}

func scanItem(s scanner) (*model.Item, error) {
	var item model.Item
	var description, createdAt, updatedAt sql.NullString
	var listID sql.NullInt64

	err := s.Scan(
		&item.ID, &item.Name, &description, &item.Quantity, &item.UnitPrice,
		&listID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = nullString(description)
	item.ShoppingListID = nullInt64(listID)
	if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

var itemCols = []string{"id", "name", "description", "quantity", "unit_price", "shopping_list_id", "created_at", "updated_at"}

func selectItems() sq.SelectBuilder {
	return builder.Select(itemCols...).From(itemsTable)
}

// storedPrice converts p for the REAL unit_price column. A price that would
// not read back equal fails with ErrInexactPrice.
func storedPrice(p decimal.Decimal) (float64, error) {
	f := p.InexactFloat64()
	if !decimal.NewFromFloat(f).Equal(p) {
		return 0, fmt.Errorf("%s: %w", p, ErrInexactPrice)
	}
	return f, nil
}

// Create inserts item and returns the stored row with its timestamps.
func (s *ItemStore) Create(ctx context.Context, item model.Item) (*model.Item, error) {
	price, err := storedPrice(item.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	var created *model.Item
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		if item.ShoppingListID != nil {
			if err := checkRef(ctx, tx, itemsTable, "shopping_list_id", shoppingListsTable, *item.ShoppingListID); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		id, err := insert(ctx, tx, builder.Insert(itemsTable).
			Columns("name", "description", "quantity", "unit_price", "shopping_list_id").
			Values(item.Name, nullable(item.Description), item.Quantity,
				price, nullable(item.ShoppingListID)))
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		created, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ItemStore) get(ctx context.Context, q querier, id int64) (*model.Item, error) {
	item, err := getOne(ctx, q, selectItems().Where(sq.Eq{"id": id}), scanItem)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	return s.get(ctx, s.db, id)
}

// Find returns the items matching f, ordered by id. The query holds the
// only database connection until the loop ends, so the loop body must not
// call any store.
func (s *ItemStore) Find(ctx context.Context, f ItemFilter) iter.Seq2[model.Item, error] {
	b := f.Page.apply(selectItems().Where(f.where()).OrderBy("id ASC"))
	return find(ctx, s.db, b, scanItem)
}

func (s *ItemStore) List(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	items, err := collect(s.Find(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, id int64, p ItemPatch) (*model.Item, error) {
	var updated *model.Item
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, itemsTable, id); err != nil {
			return err
		}

		sets := map[string]any{}
		if p.Name != nil {
			sets["name"] = *p.Name
		}
		if p.Description != nil {
			sets["description"] = *p.Description
		}
		if p.ClearDescription {
			sets["description"] = nil
		}
		if p.Quantity != nil {
			sets["quantity"] = *p.Quantity
		}
		if p.UnitPrice != nil {
			price, err := storedPrice(*p.UnitPrice)
			if err != nil {
				return fmt.Errorf("update item: %w", err)
			}
			sets["unit_price"] = price
		}
		if p.ShoppingListID != nil && !p.ClearShoppingListID {
			if err := checkRef(ctx, tx, itemsTable, "shopping_list_id", shoppingListsTable, *p.ShoppingListID); err != nil {
				return fmt.Errorf("update item: %w", err)
			}
			sets["shopping_list_id"] = *p.ShoppingListID
		}
		if p.ClearShoppingListID {
			sets["shopping_list_id"] = nil
		}
		if p.UpdatedAt != nil {
			sets["updated_at"] = formatTimestamp(*p.UpdatedAt)
		}

		if err := update(ctx, tx, itemsTable, id, sets); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		var err error
		updated, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the item. Junction rows that link it to categories stay.
func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, itemsTable, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ListTotal sums Quantity * UnitPrice over the items of a shopping list.
func (s *ItemStore) ListTotal(ctx context.Context, shoppingListID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for item, err := range s.Find(ctx, ItemFilter{ShoppingListID: &shoppingListID}) {
		if err != nil {
			return decimal.Zero, fmt.Errorf("list total: %w", err)
		}
		total = total.Add(item.Total())
	}
	return total, nil
}
