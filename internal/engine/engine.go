package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Arterning/style-mirror/internal/clock"
	"github.com/Arterning/style-mirror/internal/ident"
	"github.com/Arterning/style-mirror/internal/journal"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/occasion"
	"github.com/Arterning/style-mirror/internal/scene"
	"github.com/Arterning/style-mirror/internal/store"
	"github.com/Arterning/style-mirror/internal/wardrobe"
)

// Engine is the explicit context shared by every composition surface.
//
// It owns the store binding, the wardrobe registry, the occasion album and
// the journal. Nothing in the engine reads package-level state; two engines
// over two stores are fully independent.
//
// Thread-safety model:
//   - Load, OpenOutfit, OpenOccasion: safe from any goroutine
//   - Surface methods: safe from any goroutine, serialized per surface
type Engine struct {
	kv       store.KV
	clock    clock.Clock
	ids      ident.Generator
	logger   *slog.Logger
	wardrobe *wardrobe.Catalog
	album    *occasion.Album
	journal  *journal.Journal
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithClock sets the wall clock used for createdAt values.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the generator used for every new identifier.
func WithIDGenerator(g ident.Generator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over kv. Call Load before opening surfaces so the
// wardrobe and album reflect persisted state.
func New(kv store.KV, opts ...EngineOption) *Engine {
	e := &Engine{
		kv:     kv,
		clock:  clock.System{},
		ids:    ident.UUIDv7{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.wardrobe = wardrobe.New(kv, wardrobe.WithClock(e.clock), wardrobe.WithIDGenerator(e.ids))
	e.album = occasion.New(kv, occasion.WithClock(e.clock), occasion.WithIDGenerator(e.ids))
	e.journal = journal.New(kv, journal.WithLogger(e.logger))
	return e
}

// Load reads the wardrobe and the occasion album from the store.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.wardrobe.Load(ctx); err != nil {
		e.logger.Warn("wardrobe load failed", "error", err)
		return err
	}
	if err := e.album.Load(ctx); err != nil {
		e.logger.Warn("occasion album load failed", "error", err)
		return err
	}
	e.logger.Info("engine loaded",
		"items", len(e.wardrobe.Items()),
		"occasions", len(e.album.List()),
	)
	return nil
}

// Wardrobe returns the catalog. It is also the registry every surface reads.
func (e *Engine) Wardrobe() *wardrobe.Catalog {
	return e.wardrobe
}

// Album returns the occasion album.
func (e *Engine) Album() *occasion.Album {
	return e.album
}

// Journal returns the journal.
func (e *Engine) Journal() *journal.Journal {
	return e.journal
}

// OpenOutfit opens a surface for a new outfit scene.
func (e *Engine) OpenOutfit() (*Surface, error) {
	ed, err := scene.New(e.wardrobe, e.ids.Generate(), model.KindOutfit, "", e.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("open outfit: %w", err)
	}
	s := newSurface(e, ed, "")
	e.logger.Info("surface opened", "scene", s.sceneID, "kind", model.KindOutfit)
	return s, nil
}

// OpenOccasion opens a surface on an occasion's background photo and
// restores the clothes saved in its draft.
func (e *Engine) OpenOccasion(occasionID string) (*Surface, error) {
	o, ok := e.album.Get(occasionID)
	if !ok {
		return nil, fmt.Errorf("open occasion: %w: %s", occasion.ErrNotFound, occasionID)
	}
	ed, err := scene.New(e.wardrobe, e.ids.Generate(), model.KindOccasion, o.ImageRef, e.clock.Now())
	if err != nil {
		if errors.Is(err, scene.ErrNoBackground) {
			return nil, newError(ErrCodeNoBackground, "", "occasion "+occasionID+" has no background", err)
		}
		return nil, fmt.Errorf("open occasion: %w", err)
	}
	ed.Restore(o.Clothes)

	s := newSurface(e, ed, occasionID)
	e.logger.Info("surface opened",
		"scene", s.sceneID,
		"kind", model.KindOccasion,
		"occasion", occasionID,
		"restored", len(o.Clothes),
	)
	return s, nil
}
