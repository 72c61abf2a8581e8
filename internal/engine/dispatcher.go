package engine

import (
	"context"
	"log/slog"

	"github.com/Arterning/style-mirror/internal/drag"
)

// Dispatcher applies input from platform callbacks to one Surface in
// arrival order.
//
// Thread-safety model:
//   - EnqueueTouch / EnqueuePointer: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// When Run returns, for any reason, the surface's drag session is ended so
// a lost terminal event cannot leave a placement stuck in the dragging state.
type Dispatcher struct {
	surface *Surface
	queue   *inputQueue
	seq     Sequence
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher for s.
func NewDispatcher(s *Surface) *Dispatcher {
	return &Dispatcher{
		surface: s,
		queue:   newInputQueue(),
		logger:  s.eng.logger.With("scene", s.sceneID),
	}
}

// EnqueueTouch submits a touch event. Returns false after Stop.
func (d *Dispatcher) EnqueueTouch(ev drag.TouchEvent) bool {
	return d.queue.Enqueue(Input{Kind: InputTouch, Seq: d.seq.Next(), Touch: ev})
}

// EnqueuePointer submits a pointer event. Returns false after Stop.
func (d *Dispatcher) EnqueuePointer(ev drag.PointerEvent) bool {
	return d.queue.Enqueue(Input{Kind: InputPointer, Seq: d.seq.Next(), Pointer: ev})
}

// Pending returns the number of queued inputs not yet applied.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Run applies queued input until ctx is cancelled or Stop is called.
// After Stop, input already queued is applied before Run returns nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Debug("dispatcher starting")
	defer d.surface.cancelInput()

	for {
		in, ok := d.queue.TryDequeue()
		if ok {
			d.apply(in)
			continue
		}

		select {
		case <-ctx.Done():
			d.logger.Debug("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			// The signal channel is closed by Stop, so this fires
			// immediately once the queue is closed.
			if d.queue.Len() == 0 && d.queue.Closed() {
				d.logger.Debug("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run drains what is left and returns.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

func (d *Dispatcher) apply(in Input) {
	switch in.Kind {
	case InputTouch:
		d.surface.HandleTouch(in.Touch)
	case InputPointer:
		d.surface.HandlePointer(in.Pointer)
	default:
		d.logger.Warn("unknown input kind", "kind", in.Kind, "seq", in.Seq)
	}
}
