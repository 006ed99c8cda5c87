package converter

import (
	"encoding/json"
	"testing"
	"time"

	"notes-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelToResponse_JSONShape(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	note := model.Note{
		ID:          "65f1c0a2b3c4d5e6f7a8b9c0",
		Title:       "Buy milk",
		Description: "2%",
		IsEnabled:   true,
		IsFavorite:  false,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	raw, err := json.Marshal(ModelToResponse(note))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, "65f1c0a2b3c4d5e6f7a8b9c0", m["id"])
	assert.Equal(t, false, m["isFavorite"])
	assert.Equal(t, "2024-03-01T10:00:00Z", m["createdAt"])
	assert.NotContains(t, m, "_id")
	assert.NotContains(t, m, "__v")
	assert.Len(t, m, 7)
}

func TestModelsToResponse_EmptyIsArray(t *testing.T) {
	raw, err := json.Marshal(ModelsToResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(raw))
}
