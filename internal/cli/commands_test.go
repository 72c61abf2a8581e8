package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arterning/style-mirror/internal/journal"
	"github.com/Arterning/style-mirror/internal/model"
	"github.com/Arterning/style-mirror/internal/store"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// cliDB isolates a test from the environment and returns a fresh database path.
func cliDB(t *testing.T) string {
	t.Helper()
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvRedis, "")
	return filepath.Join(t.TempDir(), "stylemirror.db")
}

// decode parses a JSON CLI response, decoding its data into v.
func decode(t *testing.T, out string, v any) CLIResponse {
	t.Helper()

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil && resp.Data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return CLIResponse{Status: resp.Status, Error: resp.Error}
}

func addItem(t *testing.T, db, image string) model.CatalogItem {
	t.Helper()

	out, err := execute(t, "--db", db, "--format", "json", "wardrobe", "add", image)
	require.NoError(t, err)

	var item model.CatalogItem
	decode(t, out, &item)
	require.NotEmpty(t, item.ID)
	return item
}

func TestWardrobe_AddAndList(t *testing.T) {
	db := cliDB(t)

	shirt := addItem(t, db, "img://shirt")
	assert.Equal(t, "img://shirt", shirt.ImageRef)
	assert.Equal(t, model.DefaultCategory, shirt.Category)
	jeans := addItem(t, db, "img://jeans")

	out, err := execute(t, "--db", db, "--format", "json", "wardrobe", "list")
	require.NoError(t, err)

	var items []model.CatalogItem
	resp := decode(t, out, &items)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, items, 2)
	assert.Equal(t, shirt.ID, items[0].ID)
	assert.Equal(t, jeans.ID, items[1].ID)
}

func TestWardrobe_ListEmpty(t *testing.T) {
	db := cliDB(t)

	out, err := execute(t, "--db", db, "wardrobe", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No items.")

	out, err = execute(t, "--db", db, "--format", "json", "wardrobe", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"data": []`)
}

func TestWardrobe_Recategorize(t *testing.T) {
	db := cliDB(t)
	shirt := addItem(t, db, "img://shirt")
	addItem(t, db, "img://bag")

	out, err := execute(t, "--db", db, "--format", "json", "wardrobe", "recategorize", shirt.ID, "上衣")
	require.NoError(t, err)
	var updated model.CatalogItem
	decode(t, out, &updated)
	assert.Equal(t, "上衣", updated.Category)

	out, err = execute(t, "--db", db, "--format", "json", "wardrobe", "list", "--category", "上衣")
	require.NoError(t, err)
	var tops []model.CatalogItem
	decode(t, out, &tops)
	require.Len(t, tops, 1)
	assert.Equal(t, shirt.ID, tops[0].ID)
}

func TestWardrobe_RecategorizeErrors(t *testing.T) {
	db := cliDB(t)
	shirt := addItem(t, db, "img://shirt")

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unknown category", []string{shirt.ID, "帽子"}, "UNKNOWN_CATEGORY"},
		{"unknown item", []string{"missing", "上衣"}, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--db", db, "--format", "json", "wardrobe", "recategorize"}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			resp := decode(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWardrobe_AddEmptyRef(t *testing.T) {
	db := cliDB(t)

	out, err := execute(t, "--db", db, "--format", "json", "wardrobe", "add", "")
	require.Error(t, err)
	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_IMAGE_REF", resp.Error.Code)
}

func TestWardrobe_Categories(t *testing.T) {
	cliDB(t)

	out, err := execute(t, "wardrobe", "categories")
	require.NoError(t, err)
	for _, c := range model.Categories {
		assert.Contains(t, out, c)
	}
}

func TestCompose_Outfit(t *testing.T) {
	db := cliDB(t)
	shirt := addItem(t, db, "img://C1")
	hat := addItem(t, db, "img://cap")

	out, err := execute(t, "--db", db, "--format", "json", "compose",
		"--preview", "preview://look-1",
		shirt.ID+"@20,30", hat.ID, shirt.ID+"@-5.5,100")
	require.NoError(t, err)

	var entry model.JournalEntry
	decode(t, out, &entry)
	assert.Equal(t, model.KindOutfit, entry.Type)
	assert.Empty(t, entry.Background)
	require.NotNil(t, entry.Preview)
	assert.Equal(t, "preview://look-1", *entry.Preview)

	require.Len(t, entry.Items, 3)
	assert.Equal(t, shirt.ID, entry.Items[0].ID)
	assert.Equal(t, model.Position{X: 20, Y: 30}, entry.Items[0].PositionOr())
	assert.Equal(t, hat.ID, entry.Items[1].ID)
	assert.Equal(t, model.Position{}, entry.Items[1].PositionOr())
	assert.Equal(t, shirt.ID, entry.Items[2].ID)
	assert.Equal(t, model.Position{X: -5.5, Y: 100}, entry.Items[2].PositionOr())

	// The committed entry is readable back through the journal commands.
	out, err = execute(t, "--db", db, "--format", "json", "journal", "show", entry.ID)
	require.NoError(t, err)
	var shown model.JournalEntry
	decode(t, out, &shown)
	assert.Equal(t, entry, shown)

	out, err = execute(t, "--db", db, "journal", "show", entry.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "preview: preview://look-1")
	assert.Contains(t, out, shirt.ID+" @ (20, 30)")
}

func TestCompose_Errors(t *testing.T) {
	db := cliDB(t)

	t.Run("unknown item", func(t *testing.T) {
		out, err := execute(t, "--db", db, "--format", "json", "compose", "nope")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		resp := decode(t, out, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "UNKNOWN_ITEM", resp.Error.Code)
	})

	t.Run("bad position", func(t *testing.T) {
		_, err := execute(t, "--db", db, "compose", "c1@12")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "position must be x,y")
	})

	t.Run("draft without occasion", func(t *testing.T) {
		_, err := execute(t, "--db", db, "compose", "--draft", "c1")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("unknown occasion", func(t *testing.T) {
		out, err := execute(t, "--db", db, "--format", "json", "compose", "--occasion", "o-missing", "c1")
		require.Error(t, err)
		resp := decode(t, out, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("missing args", func(t *testing.T) {
		_, err := execute(t, "--db", db, "compose")
		require.Error(t, err)
	})
}

func TestCompose_OccasionDraftThenCommit(t *testing.T) {
	db := cliDB(t)
	dress := addItem(t, db, "img://dress")
	bag := addItem(t, db, "img://bag")

	out, err := execute(t, "--db", db, "--format", "json", "occasion", "add", "photo://beach")
	require.NoError(t, err)
	var occ model.Occasion
	decode(t, out, &occ)
	require.NotEmpty(t, occ.ID)
	assert.Empty(t, occ.Clothes)

	out, err = execute(t, "--db", db, "--format", "json", "compose", "--occasion", occ.ID, "--draft", dress.ID+"@12,8")
	require.NoError(t, err)
	var drafted model.Occasion
	decode(t, out, &drafted)
	require.Len(t, drafted.Clothes, 1)
	assert.Equal(t, model.Position{X: 12, Y: 8}, drafted.Clothes[0].PositionOr())

	out, err = execute(t, "--db", db, "occasion", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 draft item(s)")

	// A later session starts from the saved draft.
	out, err = execute(t, "--db", db, "--format", "json", "compose", "--occasion", occ.ID, bag.ID)
	require.NoError(t, err)
	var entry model.JournalEntry
	decode(t, out, &entry)
	assert.Equal(t, model.KindOccasion, entry.Type)
	assert.Equal(t, "photo://beach", entry.Background)
	assert.Nil(t, entry.Preview)
	require.Len(t, entry.Items, 2)
	assert.Equal(t, dress.ID, entry.Items[0].ID)
	assert.Equal(t, model.Position{X: 12, Y: 8}, entry.Items[0].PositionOr())
	assert.Equal(t, bag.ID, entry.Items[1].ID)
}

func TestOccasion_ListEmpty(t *testing.T) {
	db := cliDB(t)

	out, err := execute(t, "--db", db, "occasion", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No occasions.")
}

func TestJournal_List(t *testing.T) {
	db := cliDB(t)

	out, err := execute(t, "--db", db, "journal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Journal is empty.")

	shirt := addItem(t, db, "img://shirt")
	for range 3 {
		_, err := execute(t, "--db", db, "compose", shirt.ID)
		require.NoError(t, err)
	}

	out, err = execute(t, "--db", db, "--format", "json", "journal", "list")
	require.NoError(t, err)
	var entries []model.JournalEntry
	decode(t, out, &entries)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].CreatedAt.UnixMilli(), entries[i].CreatedAt.UnixMilli())
	}

	out, err = execute(t, "--db", db, "--format", "json", "journal", "list", "-n", "2")
	require.NoError(t, err)
	decode(t, out, &entries)
	assert.Len(t, entries, 2)
}

func TestJournal_ShowUnknown(t *testing.T) {
	db := cliDB(t)

	out, err := execute(t, "--db", db, "--format", "json", "journal", "show", "missing")
	require.Error(t, err)
	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestJournal_MalformedDocument(t *testing.T) {
	db := cliDB(t)

	st, err := store.Open(db)
	require.NoError(t, err)
	kv := store.Namespace(st, store.DefaultNamespace)
	require.NoError(t, kv.Set(context.Background(), journal.Key, []byte("{not json")))
	require.NoError(t, st.Close())

	out, err := execute(t, "--db", db, "--format", "json", "journal", "list")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(store.ErrCodeRead), resp.Error.Code)
}

func TestWardrobe_UnopenableDatabase(t *testing.T) {
	db := cliDB(t)
	require.NoError(t, os.WriteFile(db, []byte("not a sqlite database"), 0644))

	_, err := execute(t, "--db", db, "wardrobe", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
