// Package occasion keeps the background photos used by occasion scenes,
// together with the draft placements made on each of them.
package occasion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Arterning/style-mirror/internal/clock"
	"github.com/Arterning/style-mirror/internal/ident"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/schema"
	"github.com/Arterning/style-mirror/internal/store"
)

// Key is the persistent store key of the album document.
const Key = "selfies"

var (
	// ErrNotFound is returned for an unknown occasion id.
	ErrNotFound = errors.New("occasion not found")

	// ErrEmptyImageRef is returned when no background image was supplied.
	ErrEmptyImageRef = errors.New("image reference is empty")
)

// Album is the persisted list of occasions.
// All methods are safe for concurrent use.
type Album struct {
	kv    store.KV
	clock clock.Clock
	ids   ident.Generator

	mu        sync.RWMutex
	occasions []model.Occasion
}

// Option configures an Album.
type Option func(*Album)

// WithClock sets the clock used for createdAt.
func WithClock(c clock.Clock) Option {
	return func(a *Album) { a.clock = c }
}

// WithIDGenerator sets the generator used for new occasion ids.
func WithIDGenerator(g ident.Generator) Option {
	return func(a *Album) { a.ids = g }
}

// New creates an empty album bound to kv.
func New(kv store.KV, opts ...Option) *Album {
	a := &Album{
		kv:        kv,
		clock:     clock.System{},
		ids:       ident.UUIDv7{},
		occasions: []model.Occasion{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load replaces the in-memory album with the persisted one.
func (a *Album) Load(ctx context.Context) error {
	var occasions []model.Occasion
	if _, err := store.LoadDocument(ctx, a.kv, Key, schema.Occasions, &occasions); err != nil {
		return fmt.Errorf("load occasions: %w", err)
	}
	if occasions == nil {
		occasions = []model.Occasion{}
	}
	a.mu.Lock()
	a.occasions = occasions
	a.mu.Unlock()
	return nil
}

// Add records a background photo with no clothes placed on it yet.
// Like wardrobe capture, the occasion is kept in memory if the write fails.
func (a *Album) Add(ctx context.Context, imageRef string) (model.Occasion, error) {
	if strings.TrimSpace(imageRef) == "" {
		return model.Occasion{}, ErrEmptyImageRef
	}
	o := model.Occasion{
		ID:        a.ids.Generate(),
		ImageRef:  imageRef,
		CreatedAt: model.NewTimestamp(a.clock.Now()),
		Clothes:   []model.PlacedRecord{},
	}

	a.mu.Lock()
	a.occasions = append(a.occasions, o)
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	if err := store.SaveDocument(ctx, a.kv, Key, snapshot); err != nil {
		return o.Clone(), fmt.Errorf("save occasions: %w", err)
	}
	return o.Clone(), nil
}

// List returns every occasion in insertion order.
func (a *Album) List() []model.Occasion {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Get returns one occasion.
func (a *Album) Get(id string) (model.Occasion, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i := a.indexLocked(id)
	if i < 0 {
		return model.Occasion{}, false
	}
	return a.occasions[i].Clone(), true
}

// SaveDraft replaces the placed clothes of one occasion and persists the album.
func (a *Album) SaveDraft(ctx context.Context, id string, clothes []model.PlacedRecord) error {
	a.mu.Lock()
	i := a.indexLocked(id)
	if i < 0 {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	o := a.occasions[i]
	o.Clothes = clothes
	a.occasions[i] = o.Clone()
	snapshot := a.snapshotLocked()
	a.mu.Unlock()

	if err := store.SaveDocument(ctx, a.kv, Key, snapshot); err != nil {
		return fmt.Errorf("save occasions: %w", err)
	}
	return nil
}

func (a *Album) indexLocked(id string) int {
	return slices.IndexFunc(a.occasions, func(o model.Occasion) bool { return o.ID == id })
}

func (a *Album) snapshotLocked() []model.Occasion {
	out := make([]model.Occasion, len(a.occasions))
	for i, o := range a.occasions {
		out[i] = o.Clone()
	}
	return out
}
