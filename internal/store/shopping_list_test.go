package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

func TestShoppingListCreate(t *testing.T) {
	s := setupTestDB(t)
	u := mustCreateUser(t, s, "alice", "alice@example.com")

	l, err := s.lists.Create(context.Background(), model.ShoppingList{
		Name:        "Weekly",
		Description: ptr("Saturday run"),
		UserID:      &u.ID,
	})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if l.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if l.Description == nil || *l.Description != "Saturday run" {
		t.Errorf("description = %v, want %q", l.Description, "Saturday run")
	}
	if l.UserID == nil || *l.UserID != u.ID {
		t.Errorf("user_id = %v, want %d", l.UserID, u.ID)
	}
	if l.CreatedAt == nil || l.UpdatedAt == nil {
		t.Fatal("expected default timestamps")
	}
	if time.Since(*l.CreatedAt) > time.Minute {
		t.Errorf("created_at = %v, want about now", l.CreatedAt)
	}
}

func TestShoppingListCreateUnknownUser(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.lists.Create(context.Background(), model.ShoppingList{Name: "Weekly", UserID: ptr(int64(99))})
	if !errors.Is(err, ErrReferenceViolation) {
		t.Fatalf("err = %v, want ErrReferenceViolation", err)
	}

	var re *ReferenceError
	if !errors.As(err, &re) {
		t.Fatalf("err = %T, want *ReferenceError", err)
	}
	if re.Column != "user_id" || re.RefTable != "users" || re.ID != 99 {
		t.Errorf("reference error = %+v", re)
	}
}

func TestShoppingListCreateWithoutUser(t *testing.T) {
	s := setupTestDB(t)

	l := mustCreateList(t, s, "Orphan", nil)
	if l.UserID != nil {
		t.Errorf("user_id = %v, want nil", *l.UserID)
	}
	if l.Description != nil {
		t.Errorf("description = %v, want nil", *l.Description)
	}
}

func TestShoppingListCreateDuplicateName(t *testing.T) {
	s := setupTestDB(t)

	mustCreateList(t, s, "Weekly", nil)
	_, err := s.lists.Create(context.Background(), model.ShoppingList{Name: "Weekly"})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Fatalf("err = %v, want ErrUniqueViolation", err)
	}
}

func TestShoppingListFind(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	owned := mustCreateList(t, s, "Owned", &u.ID)
	unowned := mustCreateList(t, s, "Unowned", nil)

	lists, err := s.lists.List(ctx, ShoppingListFilter{UserID: &u.ID})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != owned.ID {
		t.Errorf("by user = %+v, want only %d", lists, owned.ID)
	}

	lists, err = s.lists.List(ctx, ShoppingListFilter{Unowned: true})
	if err != nil {
		t.Fatalf("list unowned: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != unowned.ID {
		t.Errorf("unowned = %+v, want only %d", lists, unowned.ID)
	}

	lists, err = s.lists.List(ctx, ShoppingListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(lists) != 2 {
		t.Errorf("expected 2 lists, got %d", len(lists))
	}
}

func TestShoppingListUpdate(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "alice", "alice@example.com")
	l, err := s.lists.Create(ctx, model.ShoppingList{Name: "Weekly", Description: ptr("old"), UserID: &u.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := s.lists.Update(ctx, l.ID, ShoppingListPatch{
		Name:             ptr("Monthly"),
		ClearDescription: true,
		ClearUserID:      true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Monthly" {
		t.Errorf("name = %q, want %q", updated.Name, "Monthly")
	}
	if updated.Description != nil {
		t.Errorf("description = %q, want nil", *updated.Description)
	}
	if updated.UserID != nil {
		t.Errorf("user_id = %d, want nil", *updated.UserID)
	}
	if !updated.UpdatedAt.Equal(*l.UpdatedAt) {
		t.Errorf("updated_at changed from %v to %v", l.UpdatedAt, updated.UpdatedAt)
	}
}

func TestShoppingListUpdateClearWins(t *testing.T) {
	s := setupTestDB(t)

	l := mustCreateList(t, s, "Weekly", nil)
	updated, err := s.lists.Update(context.Background(), l.ID, ShoppingListPatch{
		Description:      ptr("ignored"),
		ClearDescription: true,
		UserID:           ptr(int64(12345)),
		ClearUserID:      true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != nil || updated.UserID != nil {
		t.Errorf("got description %v user_id %v, want both nil", updated.Description, updated.UserID)
	}
}

func TestShoppingListUpdateSetsUpdatedAt(t *testing.T) {
	s := setupTestDB(t)

	l := mustCreateList(t, s, "Weekly", nil)
	at := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

	updated, err := s.lists.Update(context.Background(), l.ID, ShoppingListPatch{UpdatedAt: &at})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(at) {
		t.Errorf("updated_at = %v, want %v", updated.UpdatedAt, at)
	}
	if !updated.CreatedAt.Equal(*l.CreatedAt) {
		t.Errorf("created_at changed from %v to %v", l.CreatedAt, updated.CreatedAt)
	}
}

func TestShoppingListUpdateUnknownUser(t *testing.T) {
	s := setupTestDB(t)

	l := mustCreateList(t, s, "Weekly", nil)
	_, err := s.lists.Update(context.Background(), l.ID, ShoppingListPatch{UserID: ptr(int64(7))})
	if !errors.Is(err, ErrReferenceViolation) {
		t.Fatalf("err = %v, want ErrReferenceViolation", err)
	}
}

func TestShoppingListUpdateNotFound(t *testing.T) {
	s := setupTestDB(t)

	_, err := s.lists.Update(context.Background(), 5, ShoppingListPatch{Name: ptr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestShoppingListDeleteLeavesItems(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	l := mustCreateList(t, s, "Weekly", nil)
	item := mustCreateItem(t, s, "Milk", &l.ID)

	if err := s.lists.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}

	got, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil {
		t.Fatal("item should survive list delete")
	}
	if got.ShoppingListID == nil || *got.ShoppingListID != l.ID {
		t.Errorf("shopping_list_id = %v, want dangling %d", got.ShoppingListID, l.ID)
	}

	if err := s.lists.Delete(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
