package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := Namespace(NewMemory(), DefaultNamespace)

	_, found, err := kv.Get(ctx, "wardrobe")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "wardrobe", []byte(`[{"id":"c1"}]`)))

	value, found, err := kv.Get(ctx, "wardrobe")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"c1"}]`, string(value))
}

func TestNamespace_RejectsNonJSON(t *testing.T) {
	kv := Namespace(NewMemory(), DefaultNamespace)

	err := kv.Set(context.Background(), "wardrobe", []byte(`{not json`))
	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	assert.False(t, IsReadError(err))
}

func TestNamespace_ClassifiesBackendFailures(t *testing.T) {
	boom := errors.New("disk full")
	kv := Namespace(failingBackend{err: boom}, "ns")

	_, _, err := kv.Get(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, IsReadError(err))
	assert.ErrorIs(t, err, boom)

	err = kv.Set(context.Background(), "k", []byte(`[]`))
	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	assert.ErrorIs(t, err, boom)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ns", se.Namespace)
	assert.Equal(t, "k", se.Key)
}

func TestNamespace_KeepsExistingClassification(t *testing.T) {
	inner := NewWriteError("k", errors.New("quota"))
	kv := Namespace(failingBackend{err: inner}, "ns")

	_, _, err := kv.Get(context.Background(), "k")
	assert.True(t, IsWriteError(err), "an already classified error should pass through")
}

func TestIsReadError_Wrapped(t *testing.T) {
	err := fmt.Errorf("load journal: %w", NewReadError("fashion_journal", errors.New("bad json")))
	assert.True(t, IsReadError(err))
	assert.False(t, IsWriteError(err))
	assert.False(t, IsReadError(errors.New("plain")))
	assert.Contains(t, err.Error(), "STORAGE_READ")
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte(`[1]`)
	require.NoError(t, m.Set(ctx, "ns", "k", in))
	in[1] = '9'

	out, _, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(out))

	out[1] = '7'
	again, _, err := m.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(again))
}

func TestMemory_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.Error(t, m.Set(ctx, "ns", "k", []byte(`[]`)))
	_, _, err := m.Get(ctx, "ns", "k")
	assert.Error(t, err)
}

func TestSQLiteBackend_ThroughNamespace(t *testing.T) {
	ctx := context.Background()
	kv := Namespace(createTestStore(t), DefaultNamespace)

	require.NoError(t, kv.Set(ctx, "fashion_journal", []byte(`[]`)))
	value, found, err := kv.Get(ctx, "fashion_journal")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(value))
}
