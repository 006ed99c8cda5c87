//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"notes-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestRepo_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	r, err := Connect(ctx, Options{URI: uri, Database: "notes_test", ConnectTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })

	created, err := r.Create(ctx, model.Note{Title: "Buy milk", Description: "2%", IsEnabled: true, IsFavorite: true})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	favorite := false
	updated, err := r.Update(ctx, got.ID, model.NotePatch{IsFavorite: &favorite})
	require.NoError(t, err)
	assert.False(t, updated.IsFavorite)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// патч без isFavorite не должен вернуть старое значение
	title := "Buy oat milk"
	updated, err = r.Update(ctx, got.ID, model.NotePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.False(t, updated.IsFavorite)

	notes, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	require.NoError(t, r.Delete(ctx, created.ID))
	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNoteNotFound)

	assert.ErrorIs(t, r.Delete(ctx, bson.NewObjectID().Hex()), model.ErrNoteNotFound)
	_, err = r.Update(ctx, bson.NewObjectID().Hex(), model.NotePatch{Title: &title})
	assert.ErrorIs(t, err, model.ErrNoteNotFound)
}
