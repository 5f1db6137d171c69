package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/shoplist/internal/model"
)

const shoppingListsTable = "shopping_lists"

type ShoppingListStore struct {
	db *sql.DB
}

func NewShoppingListStore(db *sql.DB) *ShoppingListStore {
	return &ShoppingListStore{db: db}
}

// ShoppingListFilter matches lists on every non-nil field. Unowned selects
// lists whose user_id is NULL and overrides UserID.
type ShoppingListFilter struct {
	ID      *int64
	Name    *string
	UserID  *int64
	Unowned bool
	Page
}

func (f ShoppingListFilter) where() sq.Eq {
	eq := sq.Eq{}
	if f.ID != nil {
		eq["id"] = *f.ID
	}
	if f.Name != nil {
		eq["name"] = *f.Name
	}
	if f.UserID != nil {
		eq["user_id"] = *f.UserID
	}
	if f.Unowned {
		eq["user_id"] = nil
	}
	return eq
}

// ShoppingListPatch holds the fields to change. The Clear flags write NULL
// and win over the matching value field. UpdatedAt is only written when set.
type ShoppingListPatch struct {
	Name             *string
	Description      *string
	ClearDescription bool
	UserID           *int64
	ClearUserID      bool
	UpdatedAt        *time.Time
}

func scanShoppingList(s scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var description, createdAt, updatedAt sql.NullString
	var userID sql.NullInt64

	err := s.Scan(&l.ID, &l.Name, &description, &userID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	l.Description = nullString(description)
	l.UserID = nullInt64(userID)
	if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

var shoppingListCols = []string{"id", "name", "description", "user_id", "created_at", "updated_at"}

func selectShoppingLists() sq.SelectBuilder {
	return builder.Select(shoppingListCols...).From(shoppingListsTable)
}

// Create inserts l and returns the stored row with its timestamps. l.ID and
// the timestamps on l are ignored.
func (s *ShoppingListStore) Create(ctx context.Context, l model.ShoppingList) (*model.ShoppingList, error) {
	var created *model.ShoppingList
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if l.UserID != nil {
			if err := checkRef(ctx, tx, shoppingListsTable, "user_id", usersTable, *l.UserID); err != nil {
				return fmt.Errorf("insert shopping list: %w", err)
			}
		}
		id, err := insert(ctx, tx, builder.Insert(shoppingListsTable).
			Columns("name", "description", "user_id").
			Values(l.Name, nullable(l.Description), nullable(l.UserID)))
		if err != nil {
			return fmt.Errorf("insert shopping list: %w", err)
		}
		created, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ShoppingListStore) get(ctx context.Context, q querier, id int64) (*model.ShoppingList, error) {
	l, err := getOne(ctx, q, selectShoppingLists().Where(sq.Eq{"id": id}), scanShoppingList)
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingListStore) GetByID(ctx context.Context, id int64) (*model.ShoppingList, error) {
	return s.get(ctx, s.db, id)
}

// Find returns the lists matching f, ordered by id. The query holds the
// only database connection until the loop ends, so the loop body must not
// call any store.
func (s *ShoppingListStore) Find(ctx context.Context, f ShoppingListFilter) iter.Seq2[model.ShoppingList, error] {
	b := f.Page.apply(selectShoppingLists().Where(f.where()).OrderBy("id ASC"))
	return find(ctx, s.db, b, scanShoppingList)
}

func (s *ShoppingListStore) List(ctx context.Context, f ShoppingListFilter) ([]model.ShoppingList, error) {
	lists, err := collect(s.Find(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	return lists, nil
}

func (s *ShoppingListStore) Update(ctx context.Context, id int64, p ShoppingListPatch) (*model.ShoppingList, error) {
	var updated *model.ShoppingList
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, shoppingListsTable, id); err != nil {
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
		if p.UserID != nil && !p.ClearUserID {
			if err := checkRef(ctx, tx, shoppingListsTable, "user_id", usersTable, *p.UserID); err != nil {
				return fmt.Errorf("update shopping list: %w", err)
			}
			sets["user_id"] = *p.UserID
		}
		if p.ClearUserID {
			sets["user_id"] = nil
		}
		if p.UpdatedAt != nil {
			sets["updated_at"] = formatTimestamp(*p.UpdatedAt)
		}

		if err := update(ctx, tx, shoppingListsTable, id, sets); err != nil {
			return fmt.Errorf("update shopping list: %w", err)
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

// Delete removes the list. Items that belong to it keep their
// shopping_list_id, which then points at no row.
func (s *ShoppingListStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, shoppingListsTable, id); err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}
