package engine

import (
	"sync"

	"github.com/Arterning/style-mirror/internal/drag"
)

// InputKind distinguishes the device family of an Input.
type InputKind int

const (
	// InputTouch carries a drag.TouchEvent.
	InputTouch InputKind = iota + 1
	// InputPointer carries a drag.PointerEvent.
	InputPointer
)

// Input is one platform input event waiting to be applied to a surface.
type Input struct {
	Kind    InputKind
	Seq     int64
	Touch   drag.TouchEvent
	Pointer drag.PointerEvent
}

// inputQueue is a thread-safe FIFO queue for input events.
//
// The queue is unbounded so platform callbacks never block. Producers may be
// on any goroutine; exactly one Dispatcher.Run loop consumes.
//
// A buffered channel of size 1 signals availability so the consumer can
// wait on it together with ctx.Done().
type inputQueue struct {
	mu     sync.Mutex
	inputs []Input
	closed bool
	signal chan struct{}
}

func newInputQueue() *inputQueue {
	return &inputQueue{
		inputs: make([]Input, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an input to the back of the queue.
// Returns false if the queue is closed.
func (q *inputQueue) Enqueue(in Input) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.inputs = append(q.inputs, in)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front input without blocking.
func (q *inputQueue) TryDequeue() (Input, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.inputs) == 0 {
		return Input{}, false
	}
	in := q.inputs[0]
	// Release the slot so touch slices can be collected.
	q.inputs[0] = Input{}
	if len(q.inputs) == 1 {
		q.inputs = q.inputs[:0]
	} else {
		q.inputs = q.inputs[1:]
	}
	return in, true
}

// Wait returns a channel that signals when input may be available.
// The channel is closed when the queue is closed.
func (q *inputQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *inputQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inputs)
}

// Closed reports whether Close has been called.
func (q *inputQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more input will be enqueued.
func (q *inputQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
