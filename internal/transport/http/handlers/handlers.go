package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kssite/comments-service/internal/models"
	"github.com/kssite/comments-service/internal/service"
)

// CommentsService — контракт бизнес-слоя, нужный HTTP-хендлерам.
type CommentsService interface {
	ListComments(ctx context.Context, in service.ListInput) (*service.ListResult, error)
	CreateComment(ctx context.Context, in service.CreateInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Service CommentsService
}

func New(svc CommentsService) *Handlers {
	return &Handlers{Service: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeJSON разбирает тело запроса. Лишние поля (id, timestamp, likes и
// прочее, что клиенту не принадлежит) молча отбрасываются: значения этих
// полей всегда назначает сервер.
func decodeJSON(r *http.Request, value any) error {
	return json.NewDecoder(r.Body).Decode(value)
}
