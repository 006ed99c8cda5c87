// Package mongo реализует NoteRepository поверх MongoDB (mongo-driver v2).
// Документы хранятся в формате, совместимом с mongoose: _id ObjectID,
// camelCase поля, createdAt/updatedAt и счётчик версий __v.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-api/internal/model"
	"notes-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	DefaultDatabase   = "notes"
	DefaultCollection = "notes"
)

var _ repository.NoteRepository = (*repo)(nil)

// noteDocument представление заметки в коллекции
type noteDocument struct {
	ID          bson.ObjectID `bson:"_id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	IsEnabled   bool          `bson:"isEnabled"`
	IsFavorite  bool          `bson:"isFavorite"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
	Version     int32         `bson:"__v"`
}

type repo struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// Options параметры подключения
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Connect открывает соединение с MongoDB и проверяет его пингом.
// Клиент живет все время работы процесса и закрывается через Close.
func Connect(ctx context.Context, opts Options) (repository.NoteRepository, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return New(client, opts.Database, opts.Collection), nil
}

// New создает репозиторий поверх уже подключенного клиента
func New(client *mongo.Client, database, collection string) repository.NoteRepository {
	return &repo{
		client:     client,
		collection: client.Database(database).Collection(collection),
		now:        time.Now,
	}
}

func (r *repo) Create(ctx context.Context, note model.Note) (model.Note, error) {
	now := r.timestamp()
	doc := toDocument(note)
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return model.Note{}, fmt.Errorf("insert note: %w", err)
	}

	return toModel(doc), nil
}

func (r *repo) GetByID(ctx context.Context, id string) (model.Note, error) {
	filter, ok := idFilter(id)
	if !ok {
		return model.Note{}, model.ErrNoteNotFound
	}

	var doc noteDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("find note %s: %w", id, err)
	}

	return toModel(doc), nil
}

func (r *repo) List(ctx context.Context) ([]model.Note, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	notes := make([]model.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, toModel(doc))
	}
	return notes, nil
}

// Update выставляет через $set только заданные в патче поля и updatedAt.
// createdAt и __v не трогаются.
func (r *repo) Update(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	filter, ok := idFilter(id)
	if !ok {
		return model.Note{}, model.ErrNoteNotFound
	}

	update := bson.D{{Key: "$set", Value: setFields(patch, r.timestamp())}}

	var doc noteDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Note{}, model.ErrNoteNotFound
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("update note %s: %w", id, err)
	}

	return toModel(doc), nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	filter, ok := idFilter(id)
	if !ok {
		return model.ErrNoteNotFound
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNoteNotFound
	}
	return nil
}

func (r *repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *repo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// timestamp обрезает время до миллисекунд: точнее MongoDB не хранит,
// и возвращаемая заметка должна совпадать с прочитанной позже
func (r *repo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// idFilter строит фильтр по _id; false, если id не является ObjectID
func idFilter(id string) (bson.D, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}}, true
}

// setFields собирает содержимое $set из не-nil полей патча
func setFields(patch model.NotePatch, updatedAt time.Time) bson.D {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.IsEnabled != nil {
		set = append(set, bson.E{Key: "isEnabled", Value: *patch.IsEnabled})
	}
	if patch.IsFavorite != nil {
		set = append(set, bson.E{Key: "isFavorite", Value: *patch.IsFavorite})
	}
	return append(set, bson.E{Key: "updatedAt", Value: updatedAt})
}

func toDocument(note model.Note) noteDocument {
	doc := noteDocument{
		Title:       note.Title,
		Description: note.Description,
		IsEnabled:   note.IsEnabled,
		IsFavorite:  note.IsFavorite,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
	if oid, err := bson.ObjectIDFromHex(note.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func toModel(doc noteDocument) model.Note {
	return model.Note{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		IsEnabled:   doc.IsEnabled,
		IsFavorite:  doc.IsFavorite,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}
