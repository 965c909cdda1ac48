package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kssite/comments-service/internal/models"
	"github.com/kssite/comments-service/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// commentDoc — формат документа в коллекции comments.
// Отдельный тип, чтобы bson-теги не протекали в доменную модель.
type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Text      string             `bson:"comment_text"`
	Likes     int64              `bson:"likes"`
	IPAddress string             `bson:"ip_address"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d commentDoc) toModel() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Text:      d.Text,
		Likes:     d.Likes,
		IPAddress: d.IPAddress,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// InsertComment вставляет запись, назначая ID и CreatedAt на стороне хранилища.
// Входные ID/CreatedAt/Likes игнорируются.
func (m *Mongo) InsertComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/InsertComment"

	// MongoDB DateTime хранит миллисекунды.
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := commentDoc{
		Username:  comm.Username,
		Text:      comm.Text,
		Likes:     0,
		IPAddress: comm.IPAddress,
		CreatedAt: now,
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()
	return &out, nil
}

// ListComments возвращает страницу [Offset, Offset+Limit) в порядке
// created_at DESC, _id DESC, плюс точный общий счётчик записей.
func (m *Mongo) ListComments(ctx context.Context, p models.ListParams) (*models.Page, error) {
	const op = "storage/mongo/ListComments"

	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	limit := p.Limit
	if limit <= 0 {
		limit = m.cfg.Limits.Default
	}
	if limit > m.cfg.Limits.Max {
		limit = m.cfg.Limits.Max
	}

	total, err := m.comments.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cur, err := m.comments.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return &models.Page{
		Items:      items,
		TotalCount: total,
	}, nil
}

// DeleteComment жёстко удаляет запись по идентификатору.
// При отсутствии записи — storage.ErrNotFound.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteComment"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
