// service содержит бизнес-логику comments-сервиса.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kssite/comments-service/internal/config"
	"github.com/kssite/comments-service/internal/moderation"
	"github.com/kssite/comments-service/internal/ratelimit"
	"github.com/kssite/comments-service/internal/storage"
	"github.com/kssite/comments-service/internal/validate"
)

var (
	// ErrValidation — структурная валидация полей не пройдена.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited — исчерпана квота публикаций с адреса.
	ErrRateLimited = errors.New("rate limited")
	// ErrContentRejected — контентная политика отклонила текст.
	ErrContentRejected = errors.New("content rejected")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInternal — внутренняя ошибка (сторадж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// ValidationError несёт перечень нарушений по полям (все, не только первое).
// errors.Is(err, ErrValidation) == true.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		reasons = append(reasons, fe.Error())
	}

	return fmt.Sprintf("validation failed: %s", strings.Join(reasons, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RateLimitError несёт подсказку retry-after.
// errors.Is(err, ErrRateLimited) == true.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Service — бизнес-логика комментариев: пайплайн create, выдача, удаление.
type Service struct {
	storage storage.Storage
	limiter ratelimit.Limiter
	policy  *moderation.Policy
	cfg     config.Config
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, limiter ratelimit.Limiter, policy *moderation.Policy, cfg config.Config) *Service {
	return &Service{
		storage: storage,
		limiter: limiter,
		policy:  policy,
		cfg:     cfg,
	}
}
