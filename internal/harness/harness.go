package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Arterning/style-mirror/internal/drag"
	"github.com/Arterning/style-mirror/internal/engine"
	"github.com/Arterning/style-mirror/internal/journal"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/store"
	"github.com/Arterning/style-mirror/internal/testutil"
)

// Harness holds the state of one scenario run.
type Harness struct {
	kv      *testutil.FaultyKV
	engine  *engine.Engine
	surface *engine.Surface
	items   map[string]string // wardrobe name -> catalog id
	keys    []string          // placement keys in add order
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes engine logs to l. Default: discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// An error is returned only when the run could not be set up; step and
// assertion failures are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	kv := testutil.NewFaultyKV(store.Namespace(st, store.DefaultNamespace))
	eng := engine.New(kv,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(testutil.NewSequenceGenerator("id")),
		engine.WithLogger(cfg.logger),
	)
	if err := eng.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load engine: %w", err)
	}

	h := &Harness{
		kv:     kv,
		engine: eng,
		items:  make(map[string]string),
		logger: cfg.logger,
	}
	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed wardrobe: %w", err)
	}
	if err := h.open(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to open surface: %w", err)
	}
	defer h.surface.Close()

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	// Faults never outlive the steps; the final state is read back cleanly.
	kv.Heal()
	if err := h.collect(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to collect final state: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, scenario *Scenario) error {
	cat := h.engine.Wardrobe()
	for _, w := range scenario.Wardrobe {
		item, err := cat.Add(ctx, w.Image)
		if err != nil {
			return fmt.Errorf("add %s: %w", w.Name, err)
		}
		if w.Category != "" {
			if _, err := cat.Recategorize(ctx, item.ID, w.Category); err != nil {
				return fmt.Errorf("recategorize %s: %w", w.Name, err)
			}
		}
		h.items[w.Name] = item.ID
	}
	return nil
}

func (h *Harness) open(ctx context.Context, scenario *Scenario) error {
	if scenario.Kind == model.KindOutfit {
		s, err := h.engine.OpenOutfit()
		if err != nil {
			return err
		}
		h.surface = s
		return nil
	}

	o, err := h.engine.Album().Add(ctx, scenario.Background)
	if err != nil {
		return err
	}
	s, err := h.engine.OpenOccasion(o.ID)
	if err != nil {
		return err
	}
	h.surface = s
	return nil
}

// executeStep applies one step and records whether it matched its
// expected outcome.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	op, err := h.apply(ctx, step)

	trace := StepTrace{Index: index, Op: op}
	if err != nil {
		trace.Error = err.Error()
	}
	result.Trace = append(result.Trace, trace)

	code := ErrorCode(err)
	switch {
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, op, err))
	case step.ExpectError != "" && code != step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %q", index, op, step.ExpectError, code))
	}

	h.logger.Debug("scenario step", "index", index, "op", op, "error", err)
}

func (h *Harness) apply(ctx context.Context, step Step) (string, error) {
	switch {
	case step.Add != "":
		p, err := h.surface.AddItem(h.items[step.Add])
		if err == nil {
			h.keys = append(h.keys, p.Key)
		}
		return "add", err

	case step.Touch != nil:
		ev := drag.TouchEvent{
			Phase:   touchPhases[step.Touch.Phase],
			Target:  h.key(step.Touch.Target),
			Touches: step.Touch.Points,
		}
		h.surface.HandleTouch(ev)
		return "touch:" + step.Touch.Phase, nil

	case step.Pointer != nil:
		ev := drag.PointerEvent{
			Phase:  pointerPhases[step.Pointer.Phase],
			Target: h.key(step.Pointer.Target),
			Button: step.Pointer.Button,
			X:      step.Pointer.X,
			Y:      step.Pointer.Y,
		}
		h.surface.HandlePointer(ev)
		return "pointer:" + step.Pointer.Phase, nil

	case step.Preview != "":
		h.surface.SetPreview(step.Preview)
		return "preview", nil

	case step.Commit:
		_, err := h.surface.Commit(ctx)
		return "commit", err

	case step.Retry:
		return "retry", h.surface.RetryPending(ctx)

	case step.SaveDraft:
		return "save_draft", h.surface.SaveDraft(ctx)

	case step.Store == StoreFailWrites:
		h.kv.FailWrites(errors.New("injected write failure"))
		return "store:" + step.Store, nil

	case step.Store == StoreHeal:
		h.kv.Heal()
		return "store:" + step.Store, nil
	}
	return "noop", nil
}

// key maps a placement index to its key. Out-of-range indices map to a
// key no scene contains, which the drag controller rejects.
func (h *Harness) key(index int) string {
	if index < 0 || index >= len(h.keys) {
		return fmt.Sprintf("missing-%d", index)
	}
	return h.keys[index]
}

func (h *Harness) collect(ctx context.Context, result *Result) error {
	result.Placements = append(result.Placements, h.keys...)

	sc := h.surface.Scene()
	for _, key := range h.keys {
		for _, p := range sc.Items {
			if p.Key == key {
				result.Positions = append(result.Positions, p.Position)
				break
			}
		}
	}
	for _, l := range h.surface.Layers() {
		result.Layers = append(result.Layers, l.Key)
	}
	result.Pending = len(h.surface.Pending())

	entries, err := h.engine.Journal().Load(ctx)
	if err != nil {
		return err
	}
	result.Entries = entries

	raw, found, err := h.kv.Get(ctx, journal.Key)
	if err != nil {
		return err
	}
	if !found {
		raw = []byte("[]")
	}
	result.Journal = raw
	return nil
}

// ErrorCode returns the code of an engine or store error, "ERROR" for any
// other error and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ee *engine.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	var se *store.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	return "ERROR"
}
