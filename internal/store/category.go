package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/shoplist/internal/model"
)

const categoriesTable = "categories"

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

type CategoryFilter struct {
	ID   *int64
	Name *string
	Page
}

func (f CategoryFilter) where() sq.Eq {
	eq := sq.Eq{}
	if f.ID != nil {
		eq["id"] = *f.ID
	}
	if f.Name != nil {
		eq["name"] = *f.Name
	}
	return eq
}

type CategoryPatch struct {
	Name             *string
	Description      *string
	ClearDescription bool
}

func scanCategory(s scanner) (*model.Category, error) {
	var c model.Category
	var description sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &description); err != nil {
		return nil, err
	}
	c.Description = nullString(description)
	return &c, nil
}

var categoryCols = []string{"id", "name", "description"}

func selectCategories() sq.SelectBuilder {
	return builder.Select(categoryCols...).From(categoriesTable)
}

// Create inserts c. Category names are not unique.
func (s *CategoryStore) Create(ctx context.Context, c model.Category) (*model.Category, error) {
	var created *model.Category
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := insert(ctx, tx, builder.Insert(categoriesTable).
			Columns("name", "description").
			Values(c.Name, nullable(c.Description)))
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		created, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CategoryStore) get(ctx context.Context, q querier, id int64) (*model.Category, error) {
	c, err := getOne(ctx, q, selectCategories().Where(sq.Eq{"id": id}), scanCategory)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return s.get(ctx, s.db, id)
}

// GetByName returns the lowest-id category with the given name.
func (s *CategoryStore) GetByName(ctx context.Context, name string) (*model.Category, error) {
	c, err := getOne(ctx, s.db, selectCategories().Where(sq.Eq{"name": name}).OrderBy("id ASC").Limit(1), scanCategory)
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// Find returns the categories matching f, ordered by id. The query holds the
// only database connection until the loop ends, so the loop body must not
// call any store.
func (s *CategoryStore) Find(ctx context.Context, f CategoryFilter) iter.Seq2[model.Category, error] {
	b := f.Page.apply(selectCategories().Where(f.where()).OrderBy("id ASC"))
	return find(ctx, s.db, b, scanCategory)
}

func (s *CategoryStore) List(ctx context.Context, f CategoryFilter) ([]model.Category, error) {
	categories, err := collect(s.Find(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, id int64, p CategoryPatch) (*model.Category, error) {
	var updated *model.Category
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, categoriesTable, id); err != nil {
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

		if err := update(ctx, tx, categoriesTable, id, sets); err != nil {
			return fmt.Errorf("update category: %w", err)
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

func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, categoriesTable, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
