package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	sq "github.com/Masterminds/squirrel"

	"github.com/dukerupert/shoplist/internal/model"
)

const usersTable = "users"

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UserFilter matches users on every non-nil field.
type UserFilter struct {
	ID       *int64
	Name     *string
	Username *string
	Email    *string
	Page
}

func (f UserFilter) where() sq.Eq {
	eq := sq.Eq{}
	if f.ID != nil {
		eq["id"] = *f.ID
	}
	if f.Name != nil {
		eq["name"] = *f.Name
	}
	if f.Username != nil {
		eq["username"] = *f.Username
	}
	if f.Email != nil {
		eq["email"] = *f.Email
	}
	return eq
}

// UserPatch holds the fields to change. Nil fields are left alone.
type UserPatch struct {
	Name     *string
	Username *string
	Age      *int
	Email    *string
	Password *string
}

func (p UserPatch) sets() map[string]any {
	sets := map[string]any{}
	if p.Name != nil {
		sets["name"] = *p.Name
	}
	if p.Username != nil {
		sets["username"] = *p.Username
	}
	if p.Age != nil {
		sets["age"] = *p.Age
	}
	if p.Email != nil {
		sets["email"] = *p.Email
	}
	if p.Password != nil {
		sets["password"] = *p.Password
	}
	return sets
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Username, &u.Age, &u.Email, &u.Password)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var userCols = []string{"id", "name", "username", "age", "email", "password"}

func selectUsers() sq.SelectBuilder {
	return builder.Select(userCols...).From(usersTable)
}

// Create inserts u and returns the stored row. u.ID is ignored.
func (s *UserStore) Create(ctx context.Context, u model.User) (*model.User, error) {
	var created *model.User
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := insert(ctx, tx, builder.Insert(usersTable).
			Columns("name", "username", "age", "email", "password").
			Values(u.Name, u.Username, u.Age, u.Email, u.Password))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		created, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *UserStore) get(ctx context.Context, q querier, id int64) (*model.User, error) {
	u, err := getOne(ctx, q, selectUsers().Where(sq.Eq{"id": id}), scanUser)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.get(ctx, s.db, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := getOne(ctx, s.db, selectUsers().Where(sq.Eq{"email": email}), scanUser)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := getOne(ctx, s.db, selectUsers().Where(sq.Eq{"username": username}), scanUser)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Find returns the users matching f, ordered by id. The query holds the
// only database connection until the loop ends, so the loop body must not
// call any store.
func (s *UserStore) Find(ctx context.Context, f UserFilter) iter.Seq2[model.User, error] {
	b := f.Page.apply(selectUsers().Where(f.where()).OrderBy("id ASC"))
	return find(ctx, s.db, b, scanUser)
}

func (s *UserStore) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	users, err := collect(s.Find(ctx, f))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, id int64, p UserPatch) (*model.User, error) {
	var updated *model.User
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := requireRow(ctx, tx, usersTable, id); err != nil {
			return err
		}
		if err := update(ctx, tx, usersTable, id, p.sets()); err != nil {
			return fmt.Errorf("update user: %w", err)
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

// Delete removes the user. Shopping lists owned by the user keep their user_id.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if err := deleteByID(ctx, s.db, usersTable, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Clear deletes every user and returns how many were removed.
func (s *UserStore) Clear(ctx context.Context) (int64, error) {
	result, err := exec(ctx, s.db, builder.Delete(usersTable))
	if err != nil {
		return 0, fmt.Errorf("clear users: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
