// Package validation описывает схемы входных данных для каждой операции
// над заметками и проверяет запросы до вызова бизнес-логики.
// Сообщения об ошибках называют поле и нарушенное правило: `"title" is required`.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"notes-api/internal/model"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxBodyBytes = 1 << 20

// CreateNoteBody тело POST /notes
type CreateNoteBody struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// GetNotesQuery параметры GET /notes. Nil означает, что параметр не передан;
// переданный параметр не может быть пустым.
type GetNotesQuery struct {
	Title       *string `query:"title" validate:"omitempty,min=1"`
	Description *string `query:"description" validate:"omitempty,min=1"`
	IsEnabled   *string `query:"isEnabled" validate:"omitempty,boolstring"`
	IsFavorite  *string `query:"isFavorite" validate:"omitempty,boolstring"`
}

// NoteIDParams путь /notes/{noteId}
type NoteIDParams struct {
	NoteID string `param:"noteId" validate:"required,objectid"`
}

// UpdateNoteBody тело PATCH /notes/{noteId}: хотя бы одно поле обязательно
type UpdateNoteBody struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	IsEnabled   *bool   `json:"isEnabled"`
	IsFavorite  *bool   `json:"isFavorite"`
}

// Validator проверяет запросы по схемам операций
type Validator struct {
	v *validator.Validate
}

// New создает Validator с зарегистрированными правилами
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsObjectID(fl.Field().String())
	})
	// только "true"/"false" без учета регистра: "1", "t" и пустая строка не булевы
	_ = v.RegisterValidation("boolstring", func(fl validator.FieldLevel) bool {
		_, ok := parseBoolString(fl.Field().String())
		return ok
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		body := sl.Current().Interface().(UpdateNoteBody)
		if body.Title == nil && body.Description == nil && body.IsEnabled == nil && body.IsFavorite == nil {
			sl.ReportError(body, "value", "value", "minkeys", "1")
		}
	}, UpdateNoteBody{})

	return &Validator{v: v}
}

// IsObjectID проверяет формат идентификатора (24 hex символа)
func IsObjectID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// CreateNote проверяет тело запроса на создание заметки
func (val *Validator) CreateNote(body io.Reader) (model.NoteInput, error) {
	var req CreateNoteBody
	if err := decodeBody(body, &req); err != nil {
		return model.NoteInput{}, err
	}
	if err := val.check(req); err != nil {
		return model.NoteInput{}, err
	}
	return model.NoteInput{Title: req.Title, Description: req.Description}, nil
}

// GetNotes проверяет query параметры списка заметок
func (val *Validator) GetNotes(query url.Values) (model.NoteFilter, error) {
	if err := allowOnly(query, "title", "description", "isEnabled", "isFavorite"); err != nil {
		return model.NoteFilter{}, err
	}

	req := GetNotesQuery{
		Title:       queryValue(query, "title"),
		Description: queryValue(query, "description"),
		IsEnabled:   queryValue(query, "isEnabled"),
		IsFavorite:  queryValue(query, "isFavorite"),
	}
	if err := val.check(req); err != nil {
		return model.NoteFilter{}, err
	}

	filter := model.NoteFilter{Title: req.Title, Description: req.Description}
	if req.IsEnabled != nil {
		b, _ := parseBoolString(*req.IsEnabled)
		filter.IsEnabled = &b
	}
	if req.IsFavorite != nil {
		b, _ := parseBoolString(*req.IsFavorite)
		filter.IsFavorite = &b
	}
	return filter, nil
}

// queryValue возвращает значение параметра или nil, если его нет в запросе
func queryValue(query url.Values, key string) *string {
	if !query.Has(key) {
		return nil
	}
	v := query.Get(key)
	return &v
}

func parseBoolString(s string) (value bool, ok bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}

// NoteID проверяет path параметр noteId (GET/DELETE /notes/{noteId})
func (val *Validator) NoteID(pathParams map[string]string) (string, error) {
	req := NoteIDParams{NoteID: pathParams["noteId"]}
	if err := val.check(req); err != nil {
		return "", err
	}
	return req.NoteID, nil
}

// UpdateNote проверяет path параметр и тело частичного обновления
func (val *Validator) UpdateNote(pathParams map[string]string, body io.Reader) (string, model.NotePatch, error) {
	id, err := val.NoteID(pathParams)
	if err != nil {
		return "", model.NotePatch{}, err
	}

	var req UpdateNoteBody
	if err := decodeBody(body, &req); err != nil {
		return "", model.NotePatch{}, err
	}
	if err := val.check(req); err != nil {
		return "", model.NotePatch{}, err
	}

	return id, model.NotePatch{
		Title:       req.Title,
		Description: req.Description,
		IsEnabled:   req.IsEnabled,
		IsFavorite:  req.IsFavorite,
	}, nil
}

// check прогоняет validator и возвращает первое нарушенное правило
func (val *Validator) check(req any) error {
	err := val.v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewValidationError("", err.Error())
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) *model.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return model.NewValidationError(field, "is required")
	case "min":
		return model.NewValidationError(field, "is not allowed to be empty")
	case "boolean", "boolstring":
		return model.NewValidationError(field, "must be a boolean")
	case "objectid":
		return model.NewValidationError(field, "must be a valid mongo id")
	case "minkeys":
		return model.NewValidationError("", fmt.Sprintf("%q must have at least %s key", field, fe.Param()))
	default:
		return model.NewValidationError(field, fmt.Sprintf("failed on the %q rule", fe.Tag()))
	}
}

// decodeBody разбирает JSON объект, отклоняя неизвестные поля и неверные типы
func decodeBody(body io.Reader, dst any) error {
	if body == nil {
		return model.NewValidationError("", `"value" must be of type object`)
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return model.NewValidationError("", "failed to read request body")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		// пустое тело трактуется как пустой объект
		raw = []byte("{}")
	}
	if raw[0] != '{' {
		return model.NewValidationError("", `"value" must be of type object`)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return model.NewValidationError("", "request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) *model.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		kind := "a string"
		if typeErr.Type != nil && (typeErr.Type.Kind() == reflect.Bool ||
			(typeErr.Type.Kind() == reflect.Pointer && typeErr.Type.Elem().Kind() == reflect.Bool)) {
			kind = "a boolean"
		}
		return model.NewValidationError(typeErr.Field, "must be "+kind)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return model.NewValidationError("", fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset))
	}

	// encoding/json: `json: unknown field "foo"`
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		field, uerr := strconv.Unquote(name)
		if uerr != nil {
			field = strings.Trim(name, `"`)
		}
		return model.NewValidationError(field, "is not allowed")
	}

	return model.NewValidationError("", "invalid JSON body")
}

// allowOnly отклоняет query параметры, которых нет в схеме
func allowOnly(query url.Values, allowed ...string) error {
	var unknown []string
	for key := range query {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return model.NewValidationError(unknown[0], "is not allowed")
}
