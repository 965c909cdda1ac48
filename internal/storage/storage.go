package storage

import (
	"context"
	"errors"

	"github.com/kssite/comments-service/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
)

// Storage описывает операции над комментариями.
type Storage interface {
	// InsertComment вставляет новую запись.
	// Входной Comment должен содержать Username, Text (обязательные) и IPAddress.
	// Игнорируемые/вычисляемые полями хранилища: ID, CreatedAt, Likes.
	// Возвращает сохранённую запись с назначенными ID и CreatedAt.
	InsertComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// ListComments возвращает страницу [Offset, Offset+Limit) в порядке
	// created_at DESC, _id DESC, вместе с точным общим количеством записей.
	// Запрос за пределами коллекции возвращает пустую страницу, не ошибку.
	ListComments(ctx context.Context, p models.ListParams) (*models.Page, error)

	// DeleteComment выполняет жёсткое удаление по идентификатору.
	// Если запись не найдена — ErrNotFound.
	DeleteComment(ctx context.Context, id string) error

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
