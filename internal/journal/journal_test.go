package journal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/store"
	"github.com/Arterning/style-mirror/internal/testutil"
)

func ts(sec int) model.Timestamp {
	return model.NewTimestamp(testutil.Epoch.Add(time.Duration(sec) * time.Second))
}

func entry(id string, sec int) model.JournalEntry {
	item := model.CatalogItem{ID: "c1", ImageRef: "img://1", Category: model.DefaultCategory, CreatedAt: ts(0)}
	return model.JournalEntry{
		ID:        id,
		Type:      model.KindOutfit,
		Items:     []model.PlacedRecord{model.Freeze(item, model.Position{X: 20, Y: 30})},
		CreatedAt: ts(sec),
	}
}

func sqliteKV(t *testing.T) store.KV {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return store.Namespace(s, store.DefaultNamespace)
}

func ids(seq func(func(model.JournalEntry) bool)) []string {
	var out []string
	for e := range seq {
		out = append(out, e.ID)
	}
	return out
}

func TestLoad_EmptyStore(t *testing.T) {
	j := New(testutil.NewMemoryKV())

	entries, err := j.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLoad_MalformedJSON(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	require.NoError(t, backend.Set(ctx, store.DefaultNamespace, Key, []byte(`[{"id":`)))

	_, err := New(store.Namespace(backend, store.DefaultNamespace)).Load(ctx)
	require.Error(t, err)
	assert.True(t, store.IsReadError(err))
}

func TestLoad_SchemaViolation(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, Key, []byte(`[{"id":"e1","type":"collage","items":[],"createdAt":"x","preview":null}]`)))

	_, err := New(kv).Load(ctx)
	assert.True(t, store.IsReadError(err))
}

func TestRoundTrip_SQLite(t *testing.T) {
	ctx := context.Background()
	kv := sqliteKV(t)
	j := New(kv)

	preview := "preview://x"
	a := entry("e1", 1)
	b := entry("e2", 2)
	b.Type = model.KindOccasion
	b.Background = "photo://1"
	b.Preview = &preview

	require.NoError(t, j.Append(ctx, a))
	require.NoError(t, j.Append(ctx, b))

	got, err := New(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.JournalEntry{a, b}, got)
}

func TestAppend_IsIdempotentByID(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFaultyKV(testutil.NewMemoryKV())
	j := New(kv)

	require.NoError(t, j.Append(ctx, entry("e1", 1)))
	require.NoError(t, j.Append(ctx, entry("e1", 1)))

	entries, err := j.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	ok, _ := kv.Sets()
	assert.Equal(t, 1, ok, "duplicate append must not write")
}

func TestAppend_SkippedDuplicateIsLogged(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	j := New(testutil.NewMemoryKV(), WithLogger(logger))

	require.NoError(t, j.Append(ctx, entry("e1", 1)))
	assert.Empty(t, logs.String())

	// A different entry that collides on id is dropped, but not silently.
	require.NoError(t, j.Append(ctx, entry("e1", 5)))
	assert.Contains(t, logs.String(), "journal append skipped")
	assert.Contains(t, logs.String(), "entry=e1")

	entries, err := j.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ts(1), entries[0].CreatedAt)
}

func TestAppend_WriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFaultyKV(testutil.NewMemoryKV())
	j := New(kv)

	kv.FailWrites(errors.New("disk full"))
	err := j.Append(ctx, entry("e1", 1))
	require.Error(t, err)
	assert.True(t, store.IsWriteError(err))

	kv.Heal()
	require.NoError(t, j.Append(ctx, entry("e1", 1)))
	entries, err := j.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppend_ReadFailure(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFaultyKV(testutil.NewMemoryKV())
	kv.FailReads(errors.New("io"))

	err := New(kv).Append(ctx, entry("e1", 1))
	assert.True(t, store.IsReadError(err))
	ok, failed := kv.Sets()
	assert.Zero(t, ok+failed)
}

func TestListSortedByRecency(t *testing.T) {
	ctx := context.Background()
	j := New(testutil.NewMemoryKV())

	for _, e := range []model.JournalEntry{
		entry("old", 1),
		entry("newest", 9),
		entry("tie-a", 5),
		entry("tie-b", 5),
	} {
		require.NoError(t, j.Append(ctx, e))
	}

	seq, err := j.ListSortedByRecency(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "tie-a", "tie-b", "old"}, ids(seq))

	// The sequence is restartable.
	assert.Equal(t, []string{"newest", "tie-a", "tie-b", "old"}, ids(seq))
}

func TestListSortedByRecency_EarlyStop(t *testing.T) {
	ctx := context.Background()
	j := New(testutil.NewMemoryKV())
	require.NoError(t, j.Append(ctx, entry("a", 1)))
	require.NoError(t, j.Append(ctx, entry("b", 2)))

	seq, err := j.ListSortedByRecency(ctx)
	require.NoError(t, err)

	var first string
	for e := range seq {
		first = e.ID
		break
	}
	assert.Equal(t, "b", first)
}

func TestListSortedByRecency_YieldsCopies(t *testing.T) {
	ctx := context.Background()
	j := New(testutil.NewMemoryKV())
	require.NoError(t, j.Append(ctx, entry("a", 1)))

	seq, err := j.ListSortedByRecency(ctx)
	require.NoError(t, err)
	for e := range seq {
		e.Items[0].Position.X = 999
	}
	for e := range seq {
		assert.Equal(t, float64(20), e.Items[0].PositionOr().X)
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	j := New(testutil.NewMemoryKV())
	require.NoError(t, j.Append(ctx, entry("a", 1)))

	got, err := j.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = j.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
