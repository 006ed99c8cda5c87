package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"notes-api/internal/model"
	"notes-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var _ repository.NoteRepository = (*repo)(nil)

// repo хранит заметки в map и помнит порядок вставки,
// чтобы List возвращал заметки в том же порядке, что и документная БД
type repo struct {
	mu    sync.RWMutex
	notes map[string]model.Note
	order []string
	now   func() time.Time
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map
func NewRepository() repository.NoteRepository {
	return newRepo(time.Now)
}

func newRepo(now func() time.Time) *repo {
	return &repo{
		notes: make(map[string]model.Note),
		now:   now,
	}
}

// Create создает новую заметку и возвращает созданную заметку с ID
func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// ID в формате ObjectID, как у документной БД
	if note.ID == "" {
		note.ID = bson.NewObjectID().Hex()
	}
	if _, exists := r.notes[note.ID]; exists {
		return model.Note{}, fmt.Errorf("duplicate note id %s", note.ID)
	}

	now := r.timestamp()
	note.CreatedAt = now
	note.UpdatedAt = now

	r.notes[note.ID] = note
	r.order = append(r.order, note.ID)

	return note, nil
}

// GetByID возвращает заметку по её ID
func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	return note, nil
}

// List возвращает список всех заметок в порядке создания
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]model.Note, 0, len(r.order))
	for _, id := range r.order {
		notes = append(notes, r.notes[id])
	}

	return notes, nil
}

// Update накладывает патч на текущую версию заметки под блокировкой записи
func (r *repo) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.notes[id]
	if !exists {
		return model.Note{}, model.ErrNoteNotFound
	}

	note := patch.Apply(existing)
	note.UpdatedAt = r.timestamp()

	r.notes[id] = note

	return note, nil
}

// Delete удаляет заметку по ID
func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return model.ErrNoteNotFound
	}

	delete(r.notes, id)
	for i, orderedID := range r.order {
		if orderedID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// Ping всегда успешен: хранилище живет в памяти процесса
func (r *repo) Ping(ctx context.Context) error {
	return nil
}

func (r *repo) Close(ctx context.Context) error {
	return nil
}

// timestamp с точностью до миллисекунд, как у остальных хранилищ
func (r *repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}
