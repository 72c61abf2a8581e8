package engine

import "sync/atomic"

// Sequence stamps dispatched input with a strictly increasing number.
//
// The number orders input in logs only. It is never persisted and never
// used as a wall-clock substitute.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// Next returns the next sequence number and increments the counter.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last number handed out without incrementing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
