package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/tally-dev/tally/internal/model"
)

// ErrUnavailable is returned when the upstream catalog source cannot be read.
var ErrUnavailable = errors.New("catalog unavailable")

// Source is the upstream holder of categories and accounts.
type Source interface {
	FetchCategories(ctx context.Context) ([]model.Category, error)
	FetchAccounts(ctx context.Context) ([]model.Account, error)
}

// Snapshot is an immutable view of all categories and accounts as of one
// fetch. It is safe for concurrent use.
type Snapshot struct {
	categories     []model.Category
	categoryByID   map[int]model.Category
	categoryByName map[string]model.Category
	accounts       []model.Account
	accountByID    map[int]model.Account
}

// NewSnapshot indexes categories by id and by name, and accounts by id.
// The inputs are copied.
func NewSnapshot(categories []model.Category, accounts []model.Account) *Snapshot {
	s := &Snapshot{
		categories:     slices.Clone(categories),
		categoryByID:   make(map[int]model.Category, len(categories)),
		categoryByName: make(map[string]model.Category, len(categories)),
		accounts:       slices.Clone(accounts),
		accountByID:    make(map[int]model.Account, len(accounts)),
	}
	for _, c := range categories {
		s.categoryByID[c.ID] = c
		s.categoryByName[c.Name] = c
	}
	for _, a := range accounts {
		s.accountByID[a.ID] = a
	}
	return s
}

// Load fetches both collections from src and builds a Snapshot. Any source
// failure is reported as ErrUnavailable wrapping the cause.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	categories, err := src.FetchCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching categories: %w", ErrUnavailable, err)
	}
	accounts, err := src.FetchAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching accounts: %w", ErrUnavailable, err)
	}
	return NewSnapshot(categories, accounts), nil
}

// CategoryByID returns the category with the given id.
func (s *Snapshot) CategoryByID(id int) (model.Category, bool) {
	c, ok := s.categoryByID[id]
	return c, ok
}

// CategoryByName returns the category whose name matches exactly.
func (s *Snapshot) CategoryByName(name string) (model.Category, bool) {
	c, ok := s.categoryByName[name]
	return c, ok
}

// Uncategorized returns the fallback category, if the catalog has one.
func (s *Snapshot) Uncategorized() (model.Category, bool) {
	return s.CategoryByName(model.UncategorizedName)
}

// Categories returns all categories in source order.
func (s *Snapshot) Categories() []model.Category {
	return slices.Clone(s.categories)
}

// CategoriesByName returns a copy of the name index.
func (s *Snapshot) CategoriesByName() map[string]model.Category {
	return maps.Clone(s.categoryByName)
}

// CategoriesByID returns a copy of the id index.
func (s *Snapshot) CategoriesByID() map[int]model.Category {
	return maps.Clone(s.categoryByID)
}

// Account returns the account with the given id.
func (s *Snapshot) Account(id int) (model.Account, bool) {
	a, ok := s.accountByID[id]
	return a, ok
}

// Accounts returns all accounts in source order.
func (s *Snapshot) Accounts() []model.Account {
	return slices.Clone(s.accounts)
}

// AccountsByID returns a copy of the account index.
func (s *Snapshot) AccountsByID() map[int]model.Account {
	return maps.Clone(s.accountByID)
}

// HasCategory reports whether a category id exists.
func (s *Snapshot) HasCategory(id int) bool {
	_, ok := s.categoryByID[id]
	return ok
}

// HasAccount reports whether an account id exists.
func (s *Snapshot) HasAccount(id int) bool {
	_, ok := s.accountByID[id]
	return ok
}
