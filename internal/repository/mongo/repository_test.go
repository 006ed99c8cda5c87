package mongo

import (
	"testing"
	"time"

	"notes-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIDFilter(t *testing.T) {
	oid := bson.NewObjectID()

	filter, ok := idFilter(oid.Hex())
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "_id", Value: oid}}, filter)

	_, ok = idFilter("not-an-object-id")
	assert.False(t, ok)
}

func TestDocumentRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	note := model.Note{
		ID:          bson.NewObjectID().Hex(),
		Title:       "Buy milk",
		Description: "2%",
		IsEnabled:   true,
		IsFavorite:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc := toDocument(note)
	assert.Equal(t, note.ID, doc.ID.Hex())
	assert.Zero(t, doc.Version)

	assert.Equal(t, note, toModel(doc))
}

func TestToDocument_EmptyIDStaysZero(t *testing.T) {
	doc := toDocument(model.Note{Title: "t"})
	assert.True(t, doc.ID.IsZero())
}

func TestDocumentBSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(noteDocument{ID: bson.NewObjectID(), Title: "t"})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))

	for _, key := range []string{"_id", "title", "description", "isEnabled", "isFavorite", "createdAt", "updatedAt", "__v"} {
		assert.Contains(t, m, key)
	}
}

func TestSetFields_OnlyPatchedFields(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	favorite := false

	set := setFields(model.NotePatch{IsFavorite: &favorite}, ts)

	assert.Equal(t, bson.D{
		{Key: "isFavorite", Value: false},
		{Key: "updatedAt", Value: ts},
	}, set, "fields absent from the patch must not be overwritten")

	title, description, enabled := "t", "d", true
	set = setFields(model.NotePatch{Title: &title, Description: &description, IsEnabled: &enabled}, ts)
	assert.Equal(t, bson.D{
		{Key: "title", Value: "t"},
		{Key: "description", Value: "d"},
		{Key: "isEnabled", Value: true},
		{Key: "updatedAt", Value: ts},
	}, set)
}
