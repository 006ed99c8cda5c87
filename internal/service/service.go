package service

import (
	"context"

	"notes-api/internal/model"
)

// NoteService интерфейс для бизнес-логики работы с заметками
type NoteService interface {
	// Create создает новую заметку; незаданные флаги принимают значение true
	Create(ctx context.Context, input model.NoteInput) (model.Note, error)

	// List возвращает все заметки без фильтрации и пагинации
	List(ctx context.Context) ([]model.Note, error)

	// Get возвращает заметку по ID или nil, если её нет
	Get(ctx context.Context, id string) (*model.Note, error)

	// Update накладывает патч на заметку; model.ErrNoteNotFound если её нет
	Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error)

	// Delete удаляет заметку и возвращает её состояние до удаления
	Delete(ctx context.Context, id string) (model.Note, error)
}
