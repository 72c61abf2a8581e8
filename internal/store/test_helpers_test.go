package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new SQLite store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// failingBackend fails every call with err.
type failingBackend struct {
	err error
}

func (f failingBackend) Get(_ context.Context, _, _ string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingBackend) Set(_ context.Context, _, _ string, _ []byte) error {
	return f.err
}
