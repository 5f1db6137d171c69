// Package demo seeds the store at startup with a known user and, optionally,
// a sample shopping list.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/shoplist/internal/grocery"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/password"
	"github.com/dukerupert/shoplist/internal/store"
)

// Stores groups the stores the demo writes to.
type Stores struct {
	Users          *store.UserStore
	Lists          *store.ShoppingListStore
	Items          *store.ItemStore
	Categories     *store.CategoryStore
	ItemCategories *store.ItemCategoryStore
}

type Demo struct {
	stores Stores
	out    io.Writer
	logger *slog.Logger
}

// New returns a Demo that prints users as JSON to out.
func New(stores Stores, out io.Writer, logger *slog.Logger) *Demo {
	return &Demo{stores: stores, out: out, logger: logger}
}

// User is the account Run recreates on every start.
var User = model.User{
	Name:     "John",
	Age:      30,
	Email:    "john@example.com",
	Username: "john1",
	Password: "x",
}

// Run empties the users table, inserts User with a hashed password and
// prints every stored user. It returns the users it printed.
func (d *Demo) Run(ctx context.Context) ([]model.User, error) {
	n, err := d.stores.Users.Clear(ctx)
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	d.logger.Debug("cleared users", "count", n)

	u := User
	if u.Password, err = password.Hash(User.Password); err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	created, err := d.stores.Users.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}
	d.logger.Info("new user created", "id", created.ID, "username", created.Username)

	users, err := d.stores.Users.List(ctx, store.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}

	b, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("demo: encode users: %w", err)
	}
	fmt.Fprintf(d.out, "Getting all users from the database: %s\n", b)
	return users, nil
}

// SampleList is the name of the list Sample fills.
const SampleList = "Groceries"

type sampleItem struct {
	name     string
	quantity int
	price    string
}

var sampleItems = []sampleItem{
	{"Milk", 2, "1.29"},
	{"Sourdough Bread", 1, "4.50"},
	{"Bananas", 6, "0.25"},
	{"Ground Beef", 1, "6.99"},
	{"Coffee", 1, "11.00"},
	{"Paper Towels", 2, "3.75"},
}

// Sample makes sure SampleList exists, is owned by owner and holds the
// sample items, each linked to its suggested category. Running it again only
// fills in what is missing.
func (d *Demo) Sample(ctx context.Context, owner model.User) (*model.ShoppingList, error) {
	list, err := d.ensureList(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("demo sample: %w", err)
	}

	for _, si := range sampleItems {
		item, err := d.ensureItem(ctx, si, list.ID)
		if err != nil {
			return nil, fmt.Errorf("demo sample: %w", err)
		}
		category, err := d.ensureCategory(ctx, grocery.Suggest(item.Name))
		if err != nil {
			return nil, fmt.Errorf("demo sample: %w", err)
		}
		if err := d.ensureLink(ctx, item.ID, category.ID); err != nil {
			return nil, fmt.Errorf("demo sample: %w", err)
		}
	}

	total, err := d.stores.Items.ListTotal(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("demo sample: %w", err)
	}
	d.logger.Info("sample list ready", "list", list.Name, "items", len(sampleItems), "total", total.StringFixed(2))
	return list, nil
}

func (d *Demo) ensureList(ctx context.Context, ownerID int64) (*model.ShoppingList, error) {
	name := SampleList
	lists, err := d.stores.Lists.List(ctx, store.ShoppingListFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return d.stores.Lists.Create(ctx, model.ShoppingList{Name: name, UserID: &ownerID})
	}
	// Run recreates the owner, so an existing list points at a stale id.
	return d.stores.Lists.Update(ctx, lists[0].ID, store.ShoppingListPatch{UserID: &ownerID})
}

func (d *Demo) ensureItem(ctx context.Context, si sampleItem, listID int64) (*model.Item, error) {
	name := si.name
	items, err := d.stores.Items.List(ctx, store.ItemFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return &items[0], nil
	}
	price, err := decimal.NewFromString(si.price)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", si.name, err)
	}
	return d.stores.Items.Create(ctx, model.Item{
		Name:           si.name,
		Quantity:       si.quantity,
		UnitPrice:      price,
		ShoppingListID: &listID,
	})
}

func (d *Demo) ensureCategory(ctx context.Context, name string) (*model.Category, error) {
	c, err := d.stores.Categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	d.logger.Debug("creating category", "name", name)
	return d.stores.Categories.Create(ctx, model.Category{Name: name})
}

func (d *Demo) ensureLink(ctx context.Context, itemID, categoryID int64) error {
	link, err := d.stores.ItemCategories.Get(ctx, itemID, categoryID)
	if err != nil || link != nil {
		return err
	}
	_, err = d.stores.ItemCategories.Create(ctx, model.ItemCategory{ItemID: itemID, CategoryID: categoryID})
	return err
}
