package model

import (
	"strings"
	"time"
)

// Note представляет заметку (доменная модель)
type Note struct {
	ID          string    // ObjectID заметки (24 hex символа)
	Title       string    // Заголовок заметки
	Description string    // Описание заметки
	IsEnabled   bool      // Активна ли заметка
	IsFavorite  bool      // Добавлена ли в избранное
	CreatedAt   time.Time // Дата создания
	UpdatedAt   time.Time // Дата последнего обновления
}

// NoteInput данные для создания заметки.
// Nil-флаги заменяются значениями по умолчанию (true).
type NoteInput struct {
	Title       string
	Description string
	IsEnabled   *bool
	IsFavorite  *bool
}

// NotePatch частичное обновление заметки: применяются только не-nil поля
type NotePatch struct {
	Title       *string
	Description *string
	IsEnabled   *bool
	IsFavorite  *bool
}

// NoteFilter параметры фильтрации списка заметок
type NoteFilter struct {
	Title       *string
	Description *string
	IsEnabled   *bool
	IsFavorite  *bool
}

// NewNote собирает заметку из входных данных, подставляя значения по умолчанию
func NewNote(in NoteInput) Note {
	note := Note{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		IsEnabled:   true,
		IsFavorite:  true,
	}
	if in.IsEnabled != nil {
		note.IsEnabled = *in.IsEnabled
	}
	if in.IsFavorite != nil {
		note.IsFavorite = *in.IsFavorite
	}
	return note
}

// Validate проверяет валидность заметки
func (n *Note) Validate() error {
	if n.Title == "" {
		return NewValidationError("title", "is required")
	}
	if n.Description == "" {
		return NewValidationError("description", "is required")
	}
	return nil
}

// IsEmpty проверяет, пуста ли заметка
func (n *Note) IsEmpty() bool {
	return n.ID == "" && n.Title == "" && n.Description == ""
}

// IsEmpty возвращает true, если в патче нет ни одного поля
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.IsEnabled == nil && p.IsFavorite == nil
}

// Apply накладывает патч на заметку (поверхностное слияние).
// Строковые поля обрезаются так же, как при создании.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		n.Description = strings.TrimSpace(*p.Description)
	}
	if p.IsEnabled != nil {
		n.IsEnabled = *p.IsEnabled
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	return n
}

// Normalize обрезает строковые поля патча и проверяет, что заданные строки не пустые
func (p NotePatch) Normalize() (NotePatch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NotePatch{}, NewValidationError("title", "is required")
		}
		p.Title = &title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		if description == "" {
			return NotePatch{}, NewValidationError("description", "is required")
		}
		p.Description = &description
	}
	return p, nil
}

// IsEmpty возвращает true, если ни один фильтр не задан
func (f NoteFilter) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.IsEnabled == nil && f.IsFavorite == nil
}
