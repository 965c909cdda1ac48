package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kssite/comments-service/pkg/log"

	"github.com/kssite/comments-service/internal/models"
	"github.com/kssite/comments-service/internal/storage"
	"github.com/kssite/comments-service/internal/validate"
)

// Входные структуры сервисного слоя.

// ListInput — параметры постраничной выдачи.
// Page < 1 приводится к 1, Limit <= 0 — к cfg.Limits.Default.
type ListInput struct {
	Page  int64
	Limit int64
}

// CreateInput — публикация комментария.
// RemoteAddr — адрес автора; участвует в rate limiting и сохраняется для модерации.
type CreateInput struct {
	Username   string
	Text       string
	RemoteAddr string
}

// ListResult — страница ленты вместе с производными пагинации.
type ListResult struct {
	Comments    []models.Comment
	TotalCount  int64
	CurrentPage int64
	TotalPages  int64
	HasMore     bool
}

// ListComments — страница ленты в порядке «новые первыми».
//
// Инварианты результата:
//   - TotalPages == ceil(TotalCount/Limit);
//   - HasMore == (offset+Limit < TotalCount);
//   - запрос за пределами коллекции возвращает пустой список, не ошибку.
func (s *Service) ListComments(ctx context.Context, in ListInput) (*ListResult, error) {
	const op = "service/comments/ListComments"

	lg := log.From(ctx).With("op", op, "page", in.Page, "limit", in.Limit)

	page := in.Page
	if page < 1 {
		page = 1
	}

	limit := in.Limit
	if limit <= 0 {
		limit = s.cfg.Limits.Default
	}
	if limit > s.cfg.Limits.Max {
		limit = s.cfg.Limits.Max
	}

	offset := (page - 1) * limit

	res, err := s.storage.ListComments(ctx, models.ListParams{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		lg.Error("storage error on ListComments", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	totalPages := (res.TotalCount + limit - 1) / limit

	return &ListResult{
		Comments:    res.Items,
		TotalCount:  res.TotalCount,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     offset+limit < res.TotalCount,
	}, nil
}

// CreateComment — пайплайн публикации, по порядку:
//  1. rate limit по адресу: квоту расходует каждая попытка, так что
//     невалидный payload не позволяет прощупывать окно бесплатно;
//  2. структурная валидация обоих полей с перечислением всех нарушений;
//  3. контентная политика: запрещённая лексика -> отказ, иначе — маскирование
//     перед записью;
//  4. вставка; ID и timestamp назначает хранилище.
//
// Поведение/ошибки:
//   - *RateLimitError (ErrRateLimited) — исчерпана квота адреса;
//   - *ValidationError (ErrValidation) — нарушения по полям;
//   - ErrContentRejected — текст не прошёл политику;
//   - ErrInternal — ошибки стораджа.
func (s *Service) CreateComment(ctx context.Context, in CreateInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With("op", op, "remote_addr", in.RemoteAddr)

	if s.limiter != nil && in.RemoteAddr != "" {
		decision, err := s.limiter.Allow(ctx, in.RemoteAddr)
		if err != nil {
			// Недоступный лимитер не должен валить публикации: пропускаем с логом.
			lg.Error("rate limiter unavailable", "err", err)
		} else if !decision.Allowed {
			lg.Warn("rate limited", "retry_after", decision.RetryAfter)
			return nil, fmt.Errorf("%s: %w", op, &RateLimitError{RetryAfter: decision.RetryAfter})
		}
	}

	username := strings.TrimSpace(in.Username)
	text := strings.TrimSpace(in.Text)

	if fields := validate.Fields(username, text); len(fields) > 0 {
		lg.Warn("validation failed", "violations", len(fields))
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: fields})
	}

	if !s.policy.Allowed(username) || !s.policy.Allowed(text) {
		// Какое слово сработало — наружу не сообщаем.
		lg.Warn("content rejected by policy")
		return nil, fmt.Errorf("%s: %w", op, ErrContentRejected)
	}

	comm := models.Comment{
		Username:  s.policy.Sanitize(username),
		Text:      s.policy.Sanitize(text),
		IPAddress: in.RemoteAddr,
	}

	result, err := s.storage.InsertComment(ctx, comm)
	if err != nil {
		lg.Error("storage error on InsertComment", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return result, nil
}

// DeleteComment — жёсткое удаление по ID (модерация).
//
// Идемпотентность к отсутствию: удаление несуществующего id не считается
// ошибкой, чтобы не раскрывать факт существования записи.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id;
//   - ErrInternal — иные ошибки стораджа.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	const op = "service/comments/DeleteComment"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment already absent")
			return nil
		}

		lg.Error("storage error on DeleteComment", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}
