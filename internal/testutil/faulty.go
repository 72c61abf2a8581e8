package testutil

import (
	"context"
	"sync"

	"github.com/Arterning/style-mirror/internal/store"
)

// FaultyKV wraps a store.KV and fails reads or writes on demand.
//
// Injected failures are wrapped as store.Error values, the same shape a
// namespaced backend returns.
type FaultyKV struct {
	inner store.KV

	mu        sync.Mutex
	readErr   error
	writeErr  error
	sets      int
	failedSet int
}

// NewFaultyKV wraps inner. Until a failure is armed it behaves exactly like inner.
func NewFaultyKV(inner store.KV) *FaultyKV {
	return &FaultyKV{inner: inner}
}

// FailReads makes every Get return err until Heal is called.
func (f *FaultyKV) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailWrites makes every Set return err until Heal is called.
func (f *FaultyKV) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// Heal disarms all failures.
func (f *FaultyKV) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = nil
	f.writeErr = nil
}

// Sets returns the number of successful and failed Set calls.
func (f *FaultyKV) Sets() (ok, failed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets, f.failedSet
}

// Get implements store.KV.
func (f *FaultyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return nil, false, store.NewReadError(key, err)
	}
	return f.inner.Get(ctx, key)
}

// Set implements store.KV.
func (f *FaultyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	err := f.writeErr
	if err != nil {
		f.failedSet++
	}
	f.mu.Unlock()
	if err != nil {
		return store.NewWriteError(key, err)
	}

	if err := f.inner.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.sets++
	f.mu.Unlock()
	return nil
}

// NewMemoryKV returns a namespaced in-memory store for tests.
func NewMemoryKV() store.KV {
	return store.Namespace(store.NewMemory(), store.DefaultNamespace)
}
