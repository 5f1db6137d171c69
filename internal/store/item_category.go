package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/shoplist/internal/model"
)

const itemCategoriesTable = "item_categories"

// ItemCategoryStore manages the item/category junction. A link has no
// surrogate key; it is addressed by its (item_id, category_id) pair.
type ItemCategoryStore struct {
	db *sql.DB
}

func NewItemCategoryStore(db *sql.DB) *ItemCategoryStore {
	return &ItemCategoryStore{db: db}
}

type ItemCategoryFilter struct {
	ItemID     *int64
	CategoryID *int64
	Page
}

func (f ItemCategoryFilter) where() sq.Eq {
	eq := sq.Eq{}
	if f.ItemID != nil {
		eq["item_id"] = *f.ItemID
	}
	if f.CategoryID != nil {
		eq["category_id"] = *f.CategoryID
	}
	return eq
}

// ItemCategoryPatch moves a link to another item or category.
type ItemCategoryPatch struct {
	ItemID     *int64
	CategoryID *int64
}

func scanItemCategory(s scanner) (*model.ItemCategory, error) {
	var ic model.ItemCategory
	if err := s.Scan(&ic.ItemID, &ic.CategoryID); err != nil {
		return nil, err
	}
	return &ic, nil
}

// selectItemCategories skips rows with a NULL side. Older files allow them,
// but they link nothing.
func selectItemCategories() sq.SelectBuilder {
	return builder.Select("item_id", "category_id").
		From(itemCategoriesTable).
		Where(sq.NotEq{"item_id": nil, "category_id": nil})
}

func pairKey(ic model.ItemCategory) sq.Eq {
	return sq.Eq{"item_id": ic.ItemID, "category_id": ic.CategoryID}
}

func pairNotFound(ic model.ItemCategory) *NotFoundError {
	return &NotFoundError{
		Table: itemCategoriesTable,
		Key:   fmt.Sprintf("(%d, %d)", ic.ItemID, ic.CategoryID),
	}
}

func (s *ItemCategoryStore) checkRefs(ctx context.Context, q querier, ic model.ItemCategory) error {
	if err := checkRef(ctx, q, itemCategoriesTable, "item_id", itemsTable, ic.ItemID); err != nil {
		return err
	}
	return checkRef(ctx, q, itemCategoriesTable, "category_id", categoriesTable, ic.CategoryID)
}

// Create links an item to a category. Linking the same pair twice fails
// with ErrUniqueViolation.
func (s *ItemCategoryStore) Create(ctx context.Context, ic model.ItemCategory) (*model.ItemCategory, error) {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.checkRefs(ctx, tx, ic); err != nil {
			return fmt.Errorf("insert item category: %w", err)
		}
		_, err := exec(ctx, tx, builder.Insert(itemCategoriesTable).
			Columns("item_id", "category_id").
			Values(ic.ItemID, ic.CategoryID))
		if err != nil {
			return fmt.Errorf("insert item category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ic, nil
}

// Get returns (nil, nil) when the pair is not linked.
func (s *ItemCategoryStore) Get(ctx context.Context, itemID, categoryID int64) (*model.ItemCategory, error) {
	key := model.ItemCategory{ItemID: itemID, CategoryID: categoryID}
	ic, err := getOne(ctx, s.db, selectItemCategories().Where(pairKey(key)), scanItemCategory)
	if err != nil {
		return nil, fmt.Errorf("get item category: %w", err)
	}
	return ic, nil
}

// Find returns the links matching f in insertion order. The query holds the
// only database connection until the loop ends, so the loop body must not
// call any store.
func (s *ItemCategoryStore) Find(ctx context.Context, f ItemCategoryFilter) iter.Seq2[model.ItemCategory, error] {
	b := f.Page.apply(selectItemCategories().Where(f.where()).OrderBy("rowid ASC"))
	return find(ctx, s.db, b, scanItemCategory)
}

func (s *ItemCategoryStore) List(ctx context.Context, f ItemCategoryFilter) ([]model.ItemCategory, error) {
	links, err := collect(s.Find(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("list item categories: %w", err)
	}
	return links, nil
}

// Update re-points the link identified by key and returns the new pair.
func (s *ItemCategoryStore) Update(ctx context.Context, key model.ItemCategory, p ItemCategoryPatch) (*model.ItemCategory, error) {
	next := key
	if p.ItemID != nil {
		next.ItemID = *p.ItemID
	}
	if p.CategoryID != nil {
		next.CategoryID = *p.CategoryID
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, itemCategoriesTable, pairKey(key))
		if err != nil {
			return err
		}
		if !ok {
			return pairNotFound(key)
		}
		if next == key {
			return nil
		}
		if err := s.checkRefs(ctx, tx, next); err != nil {
			return fmt.Errorf("update item category: %w", err)
		}
		_, err = exec(ctx, tx, builder.Update(itemCategoriesTable).
			Set("item_id", next.ItemID).
			Set("category_id", next.CategoryID).
			Where(pairKey(key)))
		if err != nil {
			return fmt.Errorf("update item category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *ItemCategoryStore) Delete(ctx context.Context, key model.ItemCategory) error {
	result, err := exec(ctx, s.db, builder.Delete(itemCategoriesTable).Where(pairKey(key)))
	if err != nil {
		return fmt.Errorf("delete item category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete item category: %w", pairNotFound(key))
	}
	return nil
}

// CategoriesForItem returns the categories linked to an item. Links whose
// category no longer exists are skipped.
func (s *ItemCategoryStore) CategoriesForItem(ctx context.Context, itemID int64) ([]model.Category, error) {
	b := builder.Select("c.id", "c.name", "c.description").
		From(categoriesTable + " c").
		Join(itemCategoriesTable + " ic ON ic.category_id = c.id").
		Where(sq.Eq{"ic.item_id": itemID}).
		OrderBy("c.id ASC")
	categories, err := collect(find(ctx, s.db, b, scanCategory))
	if err != nil {
		return nil, fmt.Errorf("categories for item: %w", err)
	}
	return categories, nil
}

// ItemsInCategory returns the items linked to a category. Links whose item
// no longer exists are skipped.
func (s *ItemCategoryStore) ItemsInCategory(ctx context.Context, categoryID int64) ([]model.Item, error) {
	cols := make([]string, len(itemCols))
	for i, c := range itemCols {
		cols[i] = "i." + c
	}
	b := builder.Select(cols...).
		From(itemsTable + " i").
		Join(itemCategoriesTable + " ic ON ic.item_id = i.id").
		Where(sq.Eq{"ic.category_id": categoryID}).
		OrderBy("i.id ASC")
	items, err := collect(find(ctx, s.db, b, scanItem))
	if err != nil {
		return nil, fmt.Errorf("items in category: %w", err)
	}
	return items, nil
}
