package model

import (
	"errors"
	"fmt"
)

// ErrNoteNotFound возвращается, когда заметка с указанным ID отсутствует
var ErrNoteNotFound = errors.New("note not found")

// ValidationError ошибка входных данных (клиентская ошибка)
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создает ошибку валидации для поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%q %s", e.Field, e.Message)
}

// IsValidationError проверяет, является ли ошибка ошибкой валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
