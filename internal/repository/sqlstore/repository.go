// Package sqlstore реализует NoteRepository поверх реляционной БД через GORM
// (SQLite или MySQL). ID заметок остаются в формате ObjectID, чтобы API
// не зависел от выбранного хранилища.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notes-api/internal/logger"
	"notes-api/internal/model"
	"notes-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	slowQueryThreshold = 200 * time.Millisecond
)

var _ repository.NoteRepository = (*repo)(nil)

// noteRecord строка таблицы notes.
// Временные метки выставляет репозиторий, а не GORM.
type noteRecord struct {
	ID          string    `gorm:"primaryKey;size:24"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	IsEnabled   bool      `gorm:"not null"`
	IsFavorite  bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (noteRecord) TableName() string {
	return "notes"
}

type repo struct {
	db  *gorm.DB
	now func() time.Time
}

// Open открывает БД выбранным драйвером и мигрирует схему
func Open(ctx context.Context, driver, dsn string, log *slog.Logger) (repository.NoteRepository, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormAdapter(log, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s connection pool: %w", driver, err)
	}
	// SQLite допускает одного писателя, а каждое соединение к :memory: это отдельная БД
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	return New(ctx, db)
}

// New создает репозиторий поверх открытого соединения и мигрирует схему
func New(ctx context.Context, db *gorm.DB) (repository.NoteRepository, error) {
	if err := db.WithContext(ctx).AutoMigrate(&noteRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate notes: %w", err)
	}
	return &repo{db: db, now: time.Now}, nil
}

func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	if note.ID == "" {
		note.ID = bson.NewObjectID().Hex()
	}
	now := r.timestamp()
	note.CreatedAt = now
	note.UpdatedAt = now

	rec := toRecord(note)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return toModel(rec), nil
}

func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	var rec noteRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("find note %s: %w", id, err)
	}
	return toModel(rec), nil
}

// List упорядочивает по id: ObjectID монотонно растут, это порядок вставки
func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	var recs []noteRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	notes := make([]model.Note, 0, len(recs))
	for _, rec := range recs {
		notes = append(notes, toModel(rec))
	}
	return notes, nil
}

// Update пишет только заданные в патче колонки и перечитывает строку в той же транзакции
func (r *repo) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	var updated noteRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&noteRecord{}).Where("id = ?", id).Updates(updateColumns(patch, r.timestamp())).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", id, err)
	}
	return toModel(updated), nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&noteRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete note %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}

func (r *repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *repo) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// timestamp с точностью до миллисекунд: столько хранит datetime(3) в MySQL
func (r *repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// updateColumns колонки для UPDATE: не-nil поля патча и updated_at
func updateColumns(patch model.NotePatch, updatedAt time.Time) map[string]any {
	columns := map[string]any{"updated_at": updatedAt}
	if patch.Title != nil {
		columns["title"] = *patch.Title
	}
	if patch.Description != nil {
		columns["description"] = *patch.Description
	}
	if patch.IsEnabled != nil {
		columns["is_enabled"] = *patch.IsEnabled
	}
	if patch.IsFavorite != nil {
		columns["is_favorite"] = *patch.IsFavorite
	}
	return columns
}

func toRecord(note model.Note) noteRecord {
	return noteRecord{
		ID:          note.ID,
		Title:       note.Title,
		Description: note.Description,
		IsEnabled:   note.IsEnabled,
		IsFavorite:  note.IsFavorite,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

func toModel(rec noteRecord) model.Note {
	return model.Note{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		IsEnabled:   rec.IsEnabled,
		IsFavorite:  rec.IsFavorite,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}
