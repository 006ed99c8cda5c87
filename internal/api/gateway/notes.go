package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notes-api/internal/api/http/middleware"
	"notes-api/internal/api/http/validation"
	"notes-api/internal/converter"
	"notes-api/internal/model"
	svc "notes-api/internal/service"
)

const msgNoteNotFound = "Note not found"

// NotesHandler обрабатывает REST запросы к /notes
type NotesHandler struct {
	noteService svc.NoteService
	validator   *validation.Validator
	log         *slog.Logger
}

// NewNotesHandler создает новый экземпляр HTTP хэндлера заметок
func NewNotesHandler(noteService svc.NoteService, log *slog.Logger) *NotesHandler {
	return &NotesHandler{
		noteService: noteService,
		validator:   validation.New(),
		log:         log,
	}
}

// CreateNote POST /notes
func (h *NotesHandler) CreateNote(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	input, err := h.validator.CreateNote(r.Body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	note, err := h.noteService.Create(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.log.DebugContext(r.Context(), "note created", requestAttrs(r, "id", note.ID)...)

	writeJSON(w, http.StatusCreated, converter.ModelToResponse(note))
}

// GetNotes GET /notes
func (h *NotesHandler) GetNotes(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	filter, err := h.validator.GetNotes(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	// TODO: применить фильтры в List, когда фильтрация станет требованием; сейчас они только валидируются
	if !filter.IsEmpty() {
		h.log.DebugContext(r.Context(), "list filters accepted but not applied", "query", r.URL.RawQuery)
	}

	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelsToResponse(notes))
}

// GetNote GET /notes/{noteId}
func (h *NotesHandler) GetNote(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := h.validator.NoteID(pathParams)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	note, err := h.noteService.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if note == nil {
		middleware.WriteError(w, http.StatusNotFound, msgNoteNotFound)
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelToResponse(*note))
}

// UpdateNote PATCH /notes/{noteId}
func (h *NotesHandler) UpdateNote(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, patch, err := h.validator.UpdateNote(pathParams, r.Body)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	note, err := h.noteService.Update(r.Context(), id, patch)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelToResponse(note))
}

// DeleteNote DELETE /notes/{noteId}: 200 с пустым телом
func (h *NotesHandler) DeleteNote(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	id, err := h.validator.NoteID(pathParams)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if _, err := h.noteService.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.log.DebugContext(r.Context(), "note deleted", requestAttrs(r, "id", id)...)

	w.WriteHeader(http.StatusOK)
}

// handleError конвертирует внутренние ошибки в HTTP статусы
func (h *NotesHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		middleware.WriteError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, model.ErrNoteNotFound):
		middleware.WriteError(w, http.StatusNotFound, msgNoteNotFound)
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			requestAttrs(r, "method", r.Method, "path", r.URL.Path, "error", err)...)
		middleware.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// requestAttrs дополняет атрибуты лога subject'ом JWT, если запрос прошел авторизацию
func requestAttrs(r *http.Request, attrs ...any) []any {
	if sub, ok := middleware.Subject(r.Context()); ok {
		attrs = append(attrs, "subject", sub)
	}
	return attrs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
