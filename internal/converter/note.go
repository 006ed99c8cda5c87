package converter

import (
	"time"

	"notes-api/internal/model"
)

// NoteResponse JSON представление заметки.
// Первичный ключ отдается как id, служебные поля хранилища (версия, _id) не выводятся.
type NoteResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsEnabled   bool      `json:"isEnabled"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteListResponse ответ GET /notes
type NoteListResponse struct {
	Results []NoteResponse `json:"results"`
}

// ModelToResponse конвертирует domain модель Note в JSON ответ
func ModelToResponse(note model.Note) NoteResponse {
	return NoteResponse{
		ID:          note.ID,
		Title:       note.Title,
		Description: note.Description,
		IsEnabled:   note.IsEnabled,
		IsFavorite:  note.IsFavorite,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

// ModelsToResponse конвертирует слайс domain моделей; пустой список отдается как [], не null
func ModelsToResponse(notes []model.Note) NoteListResponse {
	results := make([]NoteResponse, len(notes))
	for i, note := range notes {
		results[i] = ModelToResponse(note)
	}
	return NoteListResponse{Results: results}
}
