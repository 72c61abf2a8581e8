package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Arterning/style-mirror/internal/drag"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/scene"
)

// Surface is one open composition surface: a scene editor, its drag
// controller and the input adapters that feed it.
//
// All scene and drag logic runs to completion under mu. The only
// suspension points are store calls in Commit, RetryPending and SaveDraft,
// which run after mu is released on a frozen copy.
//
// The touch and pointer adapters share one drag controller. While a
// gesture of one family owns the session, events of the other family are
// dropped, so a pointer can neither take over nor end a touch drag.
type Surface struct {
	eng        *Engine
	sceneID    string
	kind       model.SceneKind
	occasionID string

	mu      sync.Mutex
	editor  *scene.Editor
	drag    *drag.Controller
	touch   *drag.Touch
	pointer *drag.Pointer
	preview *string
	pending []model.JournalEntry // frozen but not yet written, oldest first
	closed  bool

	flushMu sync.Mutex
}

func newSurface(e *Engine, ed *scene.Editor, occasionID string) *Surface {
	sc := ed.Scene()
	s := &Surface{
		eng:        e,
		sceneID:    sc.ID,
		kind:       sc.Kind,
		occasionID: occasionID,
		editor:     ed,
	}
	s.drag = drag.NewController(ed, drag.WithLogger(e.logger.With("scene", sc.ID)))
	s.touch = drag.NewTouch(s.drag)
	s.pointer = drag.NewPointer(s.drag)
	return s
}

// SceneID returns the id of the scene being edited.
func (s *Surface) SceneID() string {
	return s.sceneID
}

// Kind returns the scene kind.
func (s *Surface) Kind() model.SceneKind {
	return s.kind
}

// Scene returns a copy of the scene.
func (s *Surface) Scene() model.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Scene()
}

// AddItem places a catalog item at the origin.
func (s *Surface) AddItem(ref string) (model.PlacedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.PlacedItem{}, s.closedError()
	}
	p, err := s.editor.AddItem(ref)
	if err != nil {
		if errors.Is(err, scene.ErrUnknownItem) {
			return model.PlacedItem{}, newError(ErrCodeUnknownItem, s.sceneID, "catalog item "+ref+" not found", err)
		}
		return model.PlacedItem{}, err
	}
	return p, nil
}

// Begin implements drag.Session.
func (s *Surface) Begin(key string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.drag.Begin(key, x, y)
}

// Update implements drag.Session.
func (s *Surface) Update(x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.drag.Update(x, y)
}

// End implements drag.Session.
func (s *Surface) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.End()
}

// HandleTouch routes a touch-surface event through the touch adapter.
func (s *Surface) HandleTouch(ev drag.TouchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ownedBy(s.pointer.Captured(), s.pointer.Reset) {
		return
	}
	s.touch.Handle(ev)
}

// HandlePointer routes a pointer-device event through the pointer adapter.
func (s *Surface) HandlePointer(ev drag.PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ownedBy(s.touch.Owned(), s.touch.Reset) {
		return
	}
	s.pointer.Handle(ev)
}

// ownedBy reports whether the other input family still drives the active
// session. Ownership left over from a session the controller has already
// ended is released.
func (s *Surface) ownedBy(owned bool, release func()) bool {
	if !owned {
		return false
	}
	if _, active := s.drag.Active(); active {
		return true
	}
	release()
	return false
}

// Active returns the placement key being dragged, if any.
func (s *Surface) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Active()
}

// Layers returns the render order with the dragged placement on top.
func (s *Surface) Layers() []scene.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, _ := s.drag.Active()
	return s.editor.Layers(active)
}

// SetPreview records a rendered-preview reference for the next commit.
// An empty ref clears it.
func (s *Surface) SetPreview(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref == "" {
		s.preview = nil
		return
	}
	s.preview = &ref
}

// Commit freezes the scene into a journal entry and appends it to the journal.
//
// The entry is frozen atomically with respect to drag input. If the write
// fails the entry is returned together with the store error and stays
// pending; the scene is never rolled back. Pending entries from earlier
// failed commits are written first.
func (s *Surface) Commit(ctx context.Context) (model.JournalEntry, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.JournalEntry{}, s.closedError()
	}
	if s.editor.Len() == 0 {
		s.mu.Unlock()
		return model.JournalEntry{}, newError(ErrCodeEmptyScene, s.sceneID, "cannot commit an empty scene", scene.ErrEmptyScene)
	}
	entry, err := s.editor.Freeze(s.eng.ids.Generate(), s.eng.clock.Now(), s.preview)
	if err != nil {
		s.mu.Unlock()
		return model.JournalEntry{}, err
	}
	s.preview = nil
	s.pending = append(s.pending, entry)
	s.mu.Unlock()

	if err := s.flush(ctx); err != nil {
		return entry.Clone(), err
	}
	s.eng.logger.Info("scene committed",
		"scene", s.sceneID,
		"entry", entry.ID,
		"type", entry.Type,
		"items", len(entry.Items),
	)
	return entry.Clone(), nil
}

// Pending returns copies of the entries whose write has not succeeded.
func (s *Surface) Pending() []model.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.JournalEntry, len(s.pending))
	for i, e := range s.pending {
		out[i] = e.Clone()
	}
	return out
}

// RetryPending writes the pending entries again, oldest first.
func (s *Surface) RetryPending(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.pending)
	s.mu.Unlock()
	if n == 0 {
		return newError(ErrCodeNothingPending, s.sceneID, "no pending entries", nil)
	}
	return s.flush(ctx)
}

// DiscardPending drops every pending entry and returns how many were dropped.
func (s *Surface) DiscardPending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	s.pending = nil
	if n > 0 {
		s.eng.logger.Warn("pending journal entries discarded", "scene", s.sceneID, "count", n)
	}
	return n
}

// flush appends pending entries to the journal in order and stops at the
// first failure. Journal appends are idempotent by id, so an entry written
// by a concurrent flush is not duplicated.
func (s *Surface) flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return nil
		}
		next := s.pending[0].Clone()
		s.mu.Unlock()

		if err := s.eng.journal.Append(ctx, next); err != nil {
			s.eng.logger.Warn("journal write failed, entry kept pending",
				"scene", s.sceneID,
				"entry", next.ID,
				"error", err,
			)
			return fmt.Errorf("commit %s: %w", next.ID, err)
		}

		s.mu.Lock()
		s.pending = slices.DeleteFunc(s.pending, func(e model.JournalEntry) bool { return e.ID == next.ID })
		s.mu.Unlock()
	}
}

// SaveDraft writes the current placements back to the occasion album.
// Only surfaces opened with OpenOccasion have a draft.
func (s *Surface) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closedError()
	}
	if s.occasionID == "" {
		s.mu.Unlock()
		return newError(ErrCodeNoBackground, s.sceneID, "outfit surfaces have no occasion draft", nil)
	}
	records := s.editor.Records()
	s.mu.Unlock()

	if err := s.eng.album.SaveDraft(ctx, s.occasionID, records); err != nil {
		s.eng.logger.Warn("occasion draft write failed", "occasion", s.occasionID, "error", err)
		return err
	}
	return nil
}

// Close ends any drag session and rejects further edits.
// Pending entries are kept and may still be retried or discarded.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetInputLocked()
	s.closed = true
	s.eng.logger.Info("surface closed", "scene", s.sceneID, "pending", len(s.pending))
}

// cancelInput ends any drag session without closing the surface.
func (s *Surface) cancelInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetInputLocked()
}

func (s *Surface) resetInputLocked() {
	s.drag.Reset()
	s.touch.Reset()
	s.pointer.Reset()
}

func (s *Surface) closedError() error {
	return newError(ErrCodeSurfaceClosed, s.sceneID, "surface is closed", nil)
}
