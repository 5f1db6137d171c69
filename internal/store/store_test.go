package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

type testStores struct {
	db             *sql.DB
	users          *UserStore
	lists          *ShoppingListStore
	items          *ItemStore
	categories     *CategoryStore
	itemCategories *ItemCategoryStore
}

func setupTestDB(t *testing.T) *testStores {
	t.Helper()
	db, err := database.Open(":memory:", database.Options{Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &testStores{
		db:             db,
		users:          NewUserStore(db),
		lists:          NewShoppingListStore(db),
		items:          NewItemStore(db),
		categories:     NewCategoryStore(db),
		itemCategories: NewItemCategoryStore(db),
	}
}

func ptr[T any](v T) *T { return &v }

func mustCreateUser(t *testing.T, s *testStores, username, email string) *model.User {
	t.Helper()
	u, err := s.users.Create(context.Background(), model.User{
		Name: "Test", Username: username, Age: 30, Email: email, Password: "x",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func mustCreateList(t *testing.T, s *testStores, name string, userID *int64) *model.ShoppingList {
	t.Helper()
	l, err := s.lists.Create(context.Background(), model.ShoppingList{Name: name, UserID: userID})
	if err != nil {
		t.Fatalf("create list %s: %v", name, err)
	}
	return l
}

func mustCreateItem(t *testing.T, s *testStores, name string, listID *int64) *model.Item {
	t.Helper()
	item, err := s.items.Create(context.Background(), model.Item{
		Name: name, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00"), ShoppingListID: listID,
	})
	if err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return item
}

func mustCreateCategory(t *testing.T, s *testStores, name string) *model.Category {
	t.Helper()
	c, err := s.categories.Create(context.Background(), model.Category{Name: name})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func TestFindIsRestartable(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	mustCreateCategory(t, s, "Dairy")
	mustCreateCategory(t, s, "Bakery")

	seq := s.categories.Find(ctx, CategoryFilter{})
	for pass := 0; pass < 2; pass++ {
		var names []string
		for c, err := range seq {
			if err != nil {
				t.Fatalf("pass %d: %v", pass, err)
			}
			names = append(names, c.Name)
		}
		if len(names) != 2 || names[0] != "Dairy" || names[1] != "Bakery" {
			t.Errorf("pass %d: names = %v, want [Dairy Bakery]", pass, names)
		}
	}
}

func TestFindStopsEarly(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		mustCreateCategory(t, s, name)
	}

	var seen int
	for _, err := range s.categories.Find(ctx, CategoryFilter{}) {
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		seen++
		if seen == 1 {
			break
		}
	}
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}

	// The connection must be released after an early break.
	if _, err := s.categories.Create(ctx, model.Category{Name: "D"}); err != nil {
		t.Fatalf("create after break: %v", err)
	}
}

func TestFindHoldsConnection(t *testing.T) {
	s := setupTestDB(t)
	c := mustCreateCategory(t, s, "Dairy")

	for range s.categories.Find(context.Background(), CategoryFilter{}) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_, err := s.categories.GetByID(ctx, c.ID)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("store call inside Find loop: err = %v, want context.DeadlineExceeded", err)
		}
	}

	// Collecting first frees the connection for follow-up calls.
	categories, err := s.categories.List(context.Background(), CategoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, cat := range categories {
		if _, err := s.categories.GetByID(context.Background(), cat.ID); err != nil {
			t.Errorf("get after list: %v", err)
		}
	}
}

func TestPage(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D"} {
		mustCreateCategory(t, s, name)
	}

	tests := []struct {
		page Page
		want []string
	}{
		{Page{}, []string{"A", "B", "C", "D"}},
		{Page{Limit: 2}, []string{"A", "B"}},
		{Page{Limit: 2, Offset: 1}, []string{"B", "C"}},
		{Page{Offset: 3}, []string{"D"}},
	}
	for _, tt := range tests {
		got, err := s.categories.List(ctx, CategoryFilter{Page: tt.page})
		if err != nil {
			t.Fatalf("list %+v: %v", tt.page, err)
		}
		var names []string
		for _, c := range got {
			names = append(names, c.Name)
		}
		if len(names) != len(tt.want) {
			t.Errorf("page %+v: names = %v, want %v", tt.page, names, tt.want)
			continue
		}
		for i := range names {
			if names[i] != tt.want[i] {
				t.Errorf("page %+v: names = %v, want %v", tt.page, names, tt.want)
				break
			}
		}
	}
}

func TestParseUniqueColumns(t *testing.T) {
	tests := []struct {
		msg   string
		table string
		cols  []string
	}{
		{"constraint failed: UNIQUE constraint failed: users.email (2067)", "users", []string{"email"}},
		{
			"UNIQUE constraint failed: item_categories.item_id, item_categories.category_id",
			"item_categories", []string{"item_id", "category_id"},
		},
		{"disk I/O error", "", nil},
	}
	for _, tt := range tests {
		table, cols := parseUniqueColumns(tt.msg)
		if table != tt.table {
			t.Errorf("parseUniqueColumns(%q) table = %q, want %q", tt.msg, table, tt.table)
		}
		if len(cols) != len(tt.cols) {
			t.Errorf("parseUniqueColumns(%q) cols = %v, want %v", tt.msg, cols, tt.cols)
			continue
		}
		for i := range cols {
			if cols[i] != tt.cols[i] {
				t.Errorf("parseUniqueColumns(%q) cols = %v, want %v", tt.msg, cols, tt.cols)
			}
		}
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	var err error = &ReferenceError{Table: "items", Column: "shopping_list_id", RefTable: "shopping_lists", ID: 7}
	if !errors.Is(err, ErrReferenceViolation) {
		t.Error("ReferenceError should match ErrReferenceViolation")
	}
	err = notFound("users", 3)
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if err.Error() != "users 3: not found" {
		t.Errorf("message = %q", err.Error())
	}
	err = &ConstraintError{Table: "users", Columns: []string{"email"}}
	if !errors.Is(err, ErrUniqueViolation) {
		t.Error("ConstraintError should match ErrUniqueViolation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ConstraintError should not match ErrNotFound")
	}
}
