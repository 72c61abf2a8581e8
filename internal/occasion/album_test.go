package occasion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/store"
	"github.com/Arterning/style-mirror/internal/testutil"
)

func newTestAlbum(kv store.KV) *Album {
	return New(kv,
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequenceGenerator("o")),
	)
}

func TestLoad_EmptyStore(t *testing.T) {
	a := newTestAlbum(testutil.NewMemoryKV())
	require.NoError(t, a.Load(context.Background()))
	assert.Empty(t, a.List())
}

func TestAdd_Persists(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV()
	a := newTestAlbum(kv)

	o, err := a.Add(ctx, "photo://party")
	require.NoError(t, err)
	assert.Equal(t, "o-1", o.ID)
	assert.Equal(t, "2026-01-01T00:00:01.000Z", o.CreatedAt.String())
	assert.NotNil(t, o.Clothes)

	raw, found, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":"o-1","imageUri":"photo://party","createdAt":"2026-01-01T00:00:01.000Z","clothes":[]}]`, string(raw))

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []model.Occasion{o}, reloaded.List())
}

func TestAdd_EmptyImageRef(t *testing.T) {
	_, err := newTestAlbum(testutil.NewMemoryKV()).Add(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyImageRef)
}

func TestAdd_StoresImageRefVerbatim(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV()
	a := newTestAlbum(kv)

	ref := "\tphoto:///DCIM/cafe\u0301.jpg "
	o, err := a.Add(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte(ref), []byte(o.ImageRef))

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, []byte(ref), []byte(got.ImageRef))
}

func TestAdd_BlankImageRef(t *testing.T) {
	_, err := newTestAlbum(testutil.NewMemoryKV()).Add(context.Background(), " \t\n")
	assert.ErrorIs(t, err, ErrEmptyImageRef)
}

func TestAdd_WriteFailureKeepsOccasion(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFaultyKV(testutil.NewMemoryKV())
	a := newTestAlbum(kv)
	kv.FailWrites(errors.New("quota"))

	o, err := a.Add(ctx, "photo://1")
	assert.True(t, store.IsWriteError(err))
	_, ok := a.Get(o.ID)
	assert.True(t, ok)
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV()
	a := newTestAlbum(kv)
	o, err := a.Add(ctx, "photo://1")
	require.NoError(t, err)

	item := model.CatalogItem{ID: "c1", ImageRef: "img://1", Category: model.DefaultCategory}
	clothes := []model.PlacedRecord{model.Freeze(item, model.Position{X: 4, Y: 5})}
	require.NoError(t, a.SaveDraft(ctx, o.ID, clothes))

	clothes[0].Position.X = 100

	got, ok := a.Get(o.ID)
	require.True(t, ok)
	require.Len(t, got.Clothes, 1)
	assert.Equal(t, model.Position{X: 4, Y: 5}, got.Clothes[0].PositionOr())

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	got, ok = reloaded.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, model.Position{X: 4, Y: 5}, got.Clothes[0].PositionOr())
}

func TestSaveDraft_UnknownOccasion(t *testing.T) {
	err := newTestAlbum(testutil.NewMemoryKV()).SaveDraft(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Malformed(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, Key, []byte(`[{"id":"o1","imageUri":"x","createdAt":"y"}]`)))

	a := newTestAlbum(kv)
	err := a.Load(ctx)
	assert.True(t, store.IsReadError(err), "clothes is required")
}
