package repository

import (
	"context"

	"notes-api/internal/model"
)

// NoteRepository интерфейс для работы с заметками в хранилище.
// Все реализации возвращают model.ErrNoteNotFound, если заметки с таким ID нет.
type NoteRepository interface {
	// Create сохраняет новую заметку, назначает ID и временные метки
	Create(ctx context.Context, note model.Note) (model.Note, error)

	// GetByID возвращает заметку по её ID
	GetByID(ctx context.Context, id string) (model.Note, error)

	// List возвращает все заметки в естественном порядке хранилища
	List(ctx context.Context) ([]model.Note, error)

	// Update атомарно записывает только заданные в патче поля, обновляет UpdatedAt
	// и возвращает заметку после изменения
	Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error)

	// Delete безвозвратно удаляет заметку по ID
	Delete(ctx context.Context, id string) error

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error

	// Close освобождает соединения с хранилищем
	Close(ctx context.Context) error
}
