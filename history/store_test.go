package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsql/driftsql/schema"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db, "sqlite")
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func testSnapshot() schema.Snapshot {
	snap := schema.NewSnapshot()
	snap.Tables["users"] = schema.TableDef{
		Name: "users",
		Columns: map[string]schema.ColumnDef{
			"id": {Type: schema.DataType{Name: "integer"}, PrimaryKey: true},
		},
	}
	return snap
}

func TestNewStoreProviders(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	for _, provider := range []string{"postgres", "postgresql", "mysql", "sqlite", "sqlite3"} {
		_, err := NewStore(db, provider)
		assert.NoError(t, err, provider)
	}

	_, err = NewStore(db, "oracle")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestInitIsIdempotent(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Init(context.Background()))
}

func TestRecordAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	snap := testSnapshot()
	rev := Revision{
		ID:        "20260824120000_init",
		Name:      "init",
		Comment:   "first cut",
		Checksum:  Checksum([]string{`CREATE TABLE "users" ("id" INTEGER PRIMARY KEY)`}),
		AppliedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Record(ctx, rev, snap))

	got, gotSnap, err := store.Get(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)
	assert.Equal(t, rev.Name, got.Name)
	assert.Equal(t, rev.Comment, got.Comment)
	assert.Equal(t, rev.Checksum, got.Checksum)
	assert.Equal(t, snap, gotSnap)
}

func TestGetMissingRevision(t *testing.T) {
	store := testStore(t)
	_, _, err := store.Get(context.Background(), "20260824120000_nope")
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestLatest(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, _, err := store.Latest(ctx)
	require.ErrorIs(t, err, ErrRevisionNotFound)

	snap := testSnapshot()
	require.NoError(t, store.Record(ctx, Revision{ID: "20260824120000_first", Name: "first", Checksum: "a"}, snap))
	require.NoError(t, store.Record(ctx, Revision{ID: "20260824120500_second", Name: "second", Checksum: "b"}, snap))

	latest, _, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20260824120500_second", latest.ID)
}

func TestAppliedIDsAndPending(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	snap := testSnapshot()

	require.NoError(t, store.Record(ctx, Revision{ID: "20260824120000_first", Name: "first", Checksum: "a"}, snap))

	ids, err := store.AppliedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260824120000_first"}, ids)

	pending, err := store.Pending(ctx, []string{
		"20260824120000_first",
		"20260824120500_second",
		"20260824121000_third",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"20260824120500_second", "20260824121000_third"}, pending)
}

func TestRecordDuplicateRevisionFails(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	snap := testSnapshot()

	rev := Revision{ID: "20260824120000_init", Name: "init", Checksum: "a"}
	require.NoError(t, store.Record(ctx, rev, snap))
	assert.Error(t, store.Record(ctx, rev, snap))
}

func TestChecksum(t *testing.T) {
	a := Checksum([]string{"CREATE TABLE x (id INTEGER)"})
	b := Checksum([]string{"CREATE TABLE x (id INTEGER)"})
	c := Checksum([]string{"CREATE TABLE y (id INTEGER)"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
