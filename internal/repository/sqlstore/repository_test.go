package sqlstore

import (
	"context"
	"testing"
	"time"

	"notes-api/internal/logger"
	"notes-api/internal/model"
	"notes-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestRepo(t *testing.T) repository.NoteRepository {
	t.Helper()

	r, err := Open(context.Background(), DriverSQLite, ":memory:", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func assertSameNote(t *testing.T, want, got model.Note) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.IsEnabled, got.IsEnabled)
	assert.Equal(t, want.IsFavorite, got.IsFavorite)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %v != %v", want.UpdatedAt, got.UpdatedAt)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "", logger.Discard())
	assert.ErrorContains(t, err, "unsupported sql driver")
}

func TestRepo_CreateAndGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, model.Note{Title: "Buy milk", Description: "2%", IsEnabled: true, IsFavorite: false})
	require.NoError(t, err)

	_, err = bson.ObjectIDFromHex(created.ID)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assertSameNote(t, created, got)
	assert.False(t, got.IsFavorite, "false must be persisted, not replaced by a default")
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetByID(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, model.ErrNoteNotFound)
}

func TestRepo_List_CreationOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		note, err := r.Create(ctx, model.Note{Title: title, Description: "d"})
		require.NoError(t, err)
		ids = append(ids, note.ID)
	}

	notes, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	for i, note := range notes {
		assert.Equal(t, ids[i], note.ID)
	}
}

func TestRepo_Update(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, model.Note{Title: "t", Description: "d", IsEnabled: true, IsFavorite: true})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	updated, err := r.Update(ctx, created.ID, model.NotePatch{IsFavorite: boolPtr(false)})
	require.NoError(t, err)

	assert.False(t, updated.IsFavorite)
	assert.Equal(t, "t", updated.Title)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assertSameNote(t, updated, got)
}

func TestRepo_Update_NotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.Update(ctx, bson.NewObjectID().Hex(), model.NotePatch{Title: strPtr("t")})
	assert.ErrorIs(t, err, model.ErrNoteNotFound)

	notes, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes, "failed update must not insert a row")
}

func TestRepo_Update_DisjointPatchesKeepEachOther(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, model.Note{Title: "Buy milk", Description: "2%", IsEnabled: true, IsFavorite: true})
	require.NoError(t, err)

	_, err = r.Update(ctx, created.ID, model.NotePatch{IsFavorite: boolPtr(false)})
	require.NoError(t, err)
	updated, err := r.Update(ctx, created.ID, model.NotePatch{Title: strPtr("Buy oat milk")})
	require.NoError(t, err)

	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.False(t, updated.IsFavorite, "a patch without isFavorite must not write it back")
	assert.Equal(t, "2%", updated.Description)
	assert.True(t, updated.IsEnabled)
}

func TestUpdateColumns(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, map[string]any{"updated_at": ts, "is_favorite": false},
		updateColumns(model.NotePatch{IsFavorite: boolPtr(false)}, ts))
	assert.Equal(t, map[string]any{"updated_at": ts, "title": "t", "description": "d", "is_enabled": true},
		updateColumns(model.NotePatch{Title: strPtr("t"), Description: strPtr("d"), IsEnabled: boolPtr(true)}, ts))
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestRepo_Delete(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, model.Note{Title: "t", Description: "d"})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNoteNotFound)
	assert.ErrorIs(t, r.Delete(ctx, created.ID), model.ErrNoteNotFound)
}

func TestRepo_Ping(t *testing.T) {
	r := newTestRepo(t)
	assert.NoError(t, r.Ping(context.Background()))
}
