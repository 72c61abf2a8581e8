// Package journal persists committed scenes as one chronological collection.
package journal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/schema"
	"github.com/Arterning/style-mirror/internal/store"
)

// Key is the persistent store key of the journal document.
const Key = "fashion_journal"

// ErrNotFound is returned by Get for an unknown entry id.
var ErrNotFound = errors.New("journal entry not found")

// Journal reads and appends journal entries.
//
// Every Append is a read-modify-write of the whole document. Appends from
// one Journal are serialized; the store itself is last-write-wins per key.
type Journal struct {
	kv     store.KV
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a Journal.
type Option func(*Journal)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = l
	}
}

// New creates a journal bound to kv.
func New(kv store.KV, opts ...Option) *Journal {
	j := &Journal{kv: kv, logger: slog.Default()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Load returns every stored entry in append order.
// An absent key yields an empty, non-nil slice.
func (j *Journal) Load(ctx context.Context) ([]model.JournalEntry, error) {
	var entries []model.JournalEntry
	if _, err := store.LoadDocument(ctx, j.kv, Key, schema.Journal, &entries); err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	return entries, nil
}

// Append adds entry to the end of the collection and writes it back.
//
// If an entry with the same id is already stored the call succeeds without
// writing, so retrying after a failed write cannot duplicate an entry.
func (j *Journal) Append(ctx context.Context, entry model.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.Load(ctx)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(entries, func(e model.JournalEntry) bool { return e.ID == entry.ID }) {
		j.logger.Debug("journal append skipped: id already stored",
			"entry", entry.ID,
			"type", entry.Type,
			"created_at", entry.CreatedAt.String(),
		)
		return nil
	}
	entries = append(entries, entry.Clone())
	if err := store.SaveDocument(ctx, j.kv, Key, entries); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return nil
}

// ListSortedByRecency returns entries newest first.
// Entries with equal CreatedAt keep their append order.
// The sequence iterates over a snapshot and may be ranged more than once.
func (j *Journal) ListSortedByRecency(ctx context.Context) (iter.Seq[model.JournalEntry], error) {
	entries, err := j.Load(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b model.JournalEntry) int {
		return cmp.Compare(b.CreatedAt.UnixMilli(), a.CreatedAt.UnixMilli())
	})
	return func(yield func(model.JournalEntry) bool) {
		for _, e := range entries {
			if !yield(e.Clone()) {
				return
			}
		}
	}, nil
}

// Get returns the entry with the given id.
func (j *Journal) Get(ctx context.Context, id string) (model.JournalEntry, error) {
	entries, err := j.Load(ctx)
	if err != nil {
		return model.JournalEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.JournalEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
