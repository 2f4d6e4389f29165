// Package categorize maps a row's optional category reference to an
// authoritative category, falling back to Uncategorized.
package categorize

import (
	"errors"

	"github.com/tally-dev/tally/internal/catalog"
	"github.com/tally-dev/tally/internal/model"
)

// ErrDefaultCategoryMissing means the catalog has no Uncategorized category.
// It is a catalog integrity problem and aborts the whole batch.
var ErrDefaultCategoryMissing = errors.New("catalog has no " + model.UncategorizedName + " category")

// Resolver resolves category references against one catalog snapshot.
type Resolver struct {
	snap     *catalog.Snapshot
	fallback model.Category
}

// NewResolver binds a resolver to snap. It fails with
// ErrDefaultCategoryMissing if snap has no Uncategorized category.
func NewResolver(snap *catalog.Snapshot) (*Resolver, error) {
	fallback, ok := snap.Uncategorized()
	if !ok {
		return nil, ErrDefaultCategoryMissing
	}
	return &Resolver{snap: snap, fallback: fallback}, nil
}

// Resolve returns the referenced category when it exists in the snapshot,
// and Uncategorized otherwise.
func (r *Resolver) Resolve(ref model.CategoryRef) model.Category {
	if c, ok := r.Lookup(ref); ok {
		return c
	}
	return r.fallback
}

// ResolveFirst returns the first reference in refs that exists in the
// snapshot, and Uncategorized if none does.
func (r *Resolver) ResolveFirst(refs ...model.CategoryRef) model.Category {
	for _, ref := range refs {
		if c, ok := r.Lookup(ref); ok {
			return c
		}
	}
	return r.fallback
}

// Lookup finds the referenced category without falling back.
func (r *Resolver) Lookup(ref model.CategoryRef) (model.Category, bool) {
	switch {
	case ref.IsID():
		return r.snap.CategoryByID(ref.ID)
	case ref.IsName():
		return r.snap.CategoryByName(ref.Name)
	default:
		return model.Category{}, false
	}
}

// Default returns the Uncategorized fallback.
func (r *Resolver) Default() model.Category {
	return r.fallback
}
