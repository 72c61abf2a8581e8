// Package scene holds the layered composition model and its editor.
//
// An Editor owns exactly one model.Scene. Placements reference catalog items
// by id and are resolved through a Registry whenever the scene is rendered or
// frozen, so recategorizing an item is visible on the next render.
//
// Editor is not safe for concurrent use. The engine serializes access under
// its surface lock.
package scene

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Arterning/style-mirror/internal/model"
)

var (
	// ErrUnknownItem is returned when a catalog id is not in the registry.
	ErrUnknownItem = errors.New("unknown catalog item")

	// ErrEmptyScene is returned when freezing a scene with no placements.
	ErrEmptyScene = errors.New("scene has no items")

	// ErrNoBackground is returned for an occasion scene without a background.
	ErrNoBackground = errors.New("occasion scene requires a background")

	// ErrInvalidKind is returned for an unknown scene kind.
	ErrInvalidKind = errors.New("invalid scene kind")
)

// Registry resolves catalog ids. wardrobe.Catalog satisfies it.
type Registry interface {
	Lookup(id string) (model.CatalogItem, bool)
}

// Layer is one placement in render order.
type Layer struct {
	Key      string
	Ref      string
	Position model.Position

	// Item is the live catalog item. Zero when Missing.
	Item model.CatalogItem

	// Missing is true when Ref no longer resolves. The layer renders empty
	// but keeps its position.
	Missing bool

	// Active is true for the placement being dragged.
	Active bool
}

// Editor mutates one scene.
type Editor struct {
	reg   Registry
	scene model.Scene

	// snapshots[i] is the catalog item as it was when Items[i] was placed.
	// Freeze falls back to it when the live item has gone away.
	snapshots []model.CatalogItem
}

// New creates an editor for an empty scene.
func New(reg Registry, id string, kind model.SceneKind, background string, createdAt time.Time) (*Editor, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if kind == model.KindOccasion && background == "" {
		return nil, ErrNoBackground
	}
	if kind == model.KindOutfit {
		background = ""
	}
	return &Editor{
		reg: reg,
		scene: model.Scene{
			ID:         id,
			Kind:       kind,
			Background: background,
			Items:      []model.PlacedItem{},
			CreatedAt:  model.NewTimestamp(createdAt),
		},
	}, nil
}

// AddItem places ref at the origin on top of every existing placement.
// The same catalog item may be placed more than once.
func (e *Editor) AddItem(ref string) (model.PlacedItem, error) {
	item, ok := e.reg.Lookup(ref)
	if !ok {
		return model.PlacedItem{}, fmt.Errorf("%w: %s", ErrUnknownItem, ref)
	}
	return e.place(item, model.Position{}), nil
}

// Restore re-places frozen records, for example a saved occasion draft.
// Records carry their own item copy, so the registry is not consulted.
func (e *Editor) Restore(records []model.PlacedRecord) {
	for _, r := range records {
		e.place(r.CatalogItem, r.PositionOr())
	}
}

func (e *Editor) place(item model.CatalogItem, pos model.Position) model.PlacedItem {
	p := model.PlacedItem{
		Key:      placementKey(item.ID, len(e.scene.Items)),
		Ref:      item.ID,
		Position: pos,
	}
	e.scene.Items = append(e.scene.Items, p)
	e.snapshots = append(e.snapshots, item)
	return p
}

// placementKey is unique because placements are never removed or reordered.
func placementKey(ref string, index int) string {
	return ref + "-" + strconv.Itoa(index)
}

// Position implements drag.Target.
func (e *Editor) Position(key string) (model.Position, bool) {
	i := e.indexOf(key)
	if i < 0 {
		return model.Position{}, false
	}
	return e.scene.Items[i].Position, true
}

// SetPosition implements drag.Target.
func (e *Editor) SetPosition(key string, pos model.Position) bool {
	i := e.indexOf(key)
	if i < 0 {
		return false
	}
	e.scene.Items[i].Position = pos
	return true
}

// UpdateItemPosition moves one placement. Only its position changes.
func (e *Editor) UpdateItemPosition(key string, x, y float64) bool {
	return e.SetPosition(key, model.Position{X: x, Y: y})
}

func (e *Editor) indexOf(key string) int {
	for i, p := range e.scene.Items {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Len returns the number of placements.
func (e *Editor) Len() int {
	return len(e.scene.Items)
}

// Scene returns a copy of the scene being edited.
func (e *Editor) Scene() model.Scene {
	out := e.scene
	out.Items = append([]model.PlacedItem(nil), e.scene.Items...)
	return out
}

// Layers returns placements back to front. Insertion order is kept except
// that the active placement, if any, is drawn last.
func (e *Editor) Layers(active string) []Layer {
	layers := make([]Layer, 0, len(e.scene.Items))
	var top *Layer
	for _, p := range e.scene.Items {
		l := Layer{Key: p.Key, Ref: p.Ref, Position: p.Position}
		if item, ok := e.reg.Lookup(p.Ref); ok {
			l.Item = item
		} else {
			l.Missing = true
		}
		if active != "" && p.Key == active {
			l.Active = true
			top = &l
			continue
		}
		layers = append(layers, l)
	}
	if top != nil {
		layers = append(layers, *top)
	}
	return layers
}

// Records returns a frozen copy of every placement in insertion order.
// Unlike Freeze it accepts an empty scene.
func (e *Editor) Records() []model.PlacedRecord {
	out := make([]model.PlacedRecord, len(e.scene.Items))
	for i, p := range e.scene.Items {
		item, ok := e.reg.Lookup(p.Ref)
		if !ok {
			item = e.snapshots[i]
		}
		out[i] = model.Freeze(item, p.Position)
	}
	return out
}

// Freeze snapshots the scene into a journal entry.
// The entry shares no memory with the editor.
func (e *Editor) Freeze(id string, at time.Time, preview *string) (model.JournalEntry, error) {
	if len(e.scene.Items) == 0 {
		return model.JournalEntry{}, ErrEmptyScene
	}
	entry := model.JournalEntry{
		ID:         id,
		Type:       e.scene.Kind,
		Items:      e.Records(),
		CreatedAt:  model.NewTimestamp(at),
		Preview:    preview,
		Background: e.scene.Background,
	}
	return entry.Clone(), nil
}
