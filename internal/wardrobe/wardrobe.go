// Package wardrobe owns the garment catalog and exposes it to the
// composition engine as a read-only Registry.
//
// The catalog is persisted as one JSON array under Key. Catalog is the
// capture-side collaborator (Add, Recategorize); composition code only
// ever sees the Registry interface.
package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/Arterning/style-mirror/internal/clock"
	"github.com/Arterning/style-mirror/internal/ident"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/schema"
	"github.com/Arterning/style-mirror/internal/store"
)

// Key is the persistent store key of the catalog document.
const Key = "wardrobe"

var (
	// ErrNotFound is returned when a catalog id does not exist.
	ErrNotFound = errors.New("catalog item not found")

	// ErrUnknownCategory is returned for a category outside model.Categories.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrEmptyImageRef is returned when capture produced no image reference.
	ErrEmptyImageRef = errors.New("image reference is empty")
)

// Registry is the read-only view of the catalog used by scene editors.
type Registry interface {
	// Items returns the catalog in insertion order.
	Items() []model.CatalogItem

	// Lookup resolves a catalog id.
	Lookup(id string) (model.CatalogItem, bool)
}

// Catalog is the persisted garment catalog.
//
// Thread-safety: all methods are safe for concurrent use. Any number of
// editors may read while the capture flow writes.
type Catalog struct {
	kv    store.KV
	clock clock.Clock
	ids   ident.Generator

	mu    sync.RWMutex
	items []model.CatalogItem
	index *cache.Cache // id -> model.CatalogItem
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the clock used for createdAt.
func WithClock(c clock.Clock) Option {
	return func(cat *Catalog) {
		cat.clock = c
	}
}

// WithIDGenerator sets the generator used for new item ids.
func WithIDGenerator(g ident.Generator) Option {
	return func(cat *Catalog) {
		cat.ids = g
	}
}

// New creates an empty catalog bound to kv. Call Load to read persisted items.
func New(kv store.KV, opts ...Option) *Catalog {
	c := &Catalog{
		kv:    kv,
		clock: clock.System{},
		ids:   ident.UUIDv7{},
		items: []model.CatalogItem{},
		index: cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory catalog with the persisted one.
// An absent key yields an empty catalog. On error the previous
// in-memory state is kept.
func (c *Catalog) Load(ctx context.Context) error {
	var items []model.CatalogItem
	if _, err := store.LoadDocument(ctx, c.kv, Key, schema.Wardrobe, &items); err != nil {
		return fmt.Errorf("load wardrobe: %w", err)
	}
	if items == nil {
		items = []model.CatalogItem{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.index.Flush()
	for _, it := range items {
		c.index.Set(it.ID, it, cache.NoExpiration)
	}
	return nil
}

// Items implements Registry. The returned slice is a copy.
func (c *Catalog) Items() []model.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Lookup implements Registry.
func (c *Catalog) Lookup(id string) (model.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if x, found := c.index.Get(id); found {
		return x.(model.CatalogItem), true
	}
	return model.CatalogItem{}, false
}

// ByCategory returns the items of one category in insertion order.
func (c *Catalog) ByCategory(category string) []model.CatalogItem {
	category = model.NormalizeText(category)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []model.CatalogItem{}
	for _, it := range c.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Add records a newly captured image as a catalog item in DefaultCategory
// and persists the catalog.
//
// The item stays in memory even if the write fails; the returned error is
// a store write error and a later successful write will include the item.
func (c *Catalog) Add(ctx context.Context, imageRef string) (model.CatalogItem, error) {
	if strings.TrimSpace(imageRef) == "" {
		return model.CatalogItem{}, ErrEmptyImageRef
	}

	item := model.CatalogItem{
		ID:        c.ids.Generate(),
		ImageRef:  imageRef,
		Category:  model.DefaultCategory,
		CreatedAt: model.NewTimestamp(c.clock.Now()),
	}

	c.mu.Lock()
	c.items = append(c.items, item)
	c.index.Set(item.ID, item, cache.NoExpiration)
	snapshot := slices.Clone(c.items)
	c.mu.Unlock()

	if err := store.SaveDocument(ctx, c.kv, Key, snapshot); err != nil {
		return item, fmt.Errorf("save wardrobe: %w", err)
	}
	return item, nil
}

// Recategorize changes an item's category and persists the catalog.
// Scenes that reference the item observe the change on their next render.
func (c *Catalog) Recategorize(ctx context.Context, id, category string) (model.CatalogItem, error) {
	category = model.NormalizeText(category)
	if !slices.Contains(model.Categories, category) {
		return model.CatalogItem{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	c.mu.Lock()
	i := slices.IndexFunc(c.items, func(it model.CatalogItem) bool { return it.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return model.CatalogItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items[i].Category = category
	item := c.items[i]
	c.index.Set(item.ID, item, cache.NoExpiration)
	snapshot := slices.Clone(c.items)
	c.mu.Unlock()

	if err := store.SaveDocument(ctx, c.kv, Key, snapshot); err != nil {
		return item, fmt.Errorf("save wardrobe: %w", err)
	}
	return item, nil
}
