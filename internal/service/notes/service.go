package notes

import (
	"context"
	"errors"
	"fmt"

	"notes-api/internal/model"
	"notes-api/internal/repository"
	svc "notes-api/internal/service"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками
func NewNoteService(noteRepository repository.NoteRepository) svc.NoteService {
	return &service{
		noteRepository: noteRepository,
	}
}

// Create создает новую заметку. Дубликаты заголовков допустимы.
func (s *service) Create(ctx context.Context, input model.NoteInput) (model.Note, error) {
	note := model.NewNote(input)
	if err := note.Validate(); err != nil {
		return model.Note{}, err
	}

	created, err := s.noteRepository.Create(ctx, note)
	if err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}

	return created, nil
}

// List возвращает список всех заметок
func (s *service) List(ctx context.Context) ([]model.Note, error) {
	notes, err := s.noteRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// Get возвращает заметку по её ID. Отсутствие заметки не считается ошибкой.
func (s *service) Get(ctx context.Context, id string) (*model.Note, error) {
	if id == "" {
		return nil, model.NewValidationError("noteId", "is required")
	}

	note, err := s.noteRepository.GetByID(ctx, id)
	if errors.Is(err, model.ErrNoteNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}

	return &note, nil
}

// Update обновляет только переданные поля заметки
func (s *service) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	if id == "" {
		return model.Note{}, model.NewValidationError("noteId", "is required")
	}
	if patch.IsEmpty() {
		return model.Note{}, model.NewValidationError("", `"value" must have at least 1 key`)
	}

	patch, err := patch.Normalize()
	if err != nil {
		return model.Note{}, err
	}

	// Хранилище применяет патч атомарно: поля, которых нет в патче, не перезаписываются
	saved, err := s.noteRepository.Update(ctx, id, patch)
	if err != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", id, err)
	}

	return saved, nil
}

// Delete удаляет заметку по ID.
// Чтение и удаление два отдельных вызова: при гонке двух удалений второе получит ErrNoteNotFound.
func (s *service) Delete(ctx context.Context, id string) (model.Note, error) {
	if id == "" {
		return model.Note{}, model.NewValidationError("noteId", "is required")
	}

	existing, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, fmt.Errorf("delete note %s: %w", id, err)
	}

	if err := s.noteRepository.Delete(ctx, id); err != nil {
		return model.Note{}, fmt.Errorf("delete note %s: %w", id, err)
	}

	return existing, nil
}
