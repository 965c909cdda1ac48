// Package client — программный клиент ленты комментариев.
//
// Повторяет контракт HTTP API сервиса: постраничная выдача, публикация,
// разбор единого конверта ошибок. Поверх клиента собраны Feed и Form —
// state-машины ленты с бесконечной прокруткой и формы отправки.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Comment — комментарий в представлении API.
type Comment struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"comment_text"`
	Timestamp string `json:"timestamp"`
	Likes     int64  `json:"likes"`
}

// ListResponse — страница ленты.
type ListResponse struct {
	Comments    []Comment `json:"comments"`
	TotalCount  int64     `json:"totalCount"`
	CurrentPage int64     `json:"currentPage"`
	TotalPages  int64     `json:"totalPages"`
	HasMore     bool      `json:"hasMore"`
}

// CreateResponse — подтверждение публикации.
type CreateResponse struct {
	Message string  `json:"message"`
	Comment Comment `json:"comment"`
}

// APIError — ошибка, которую сервер вернул в JSON-конверте.
type APIError struct {
	Status     int
	Message    string
	Details    map[string]string
	RetryAfter time.Duration
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// RateLimited — ответ 429; RetryAfter подсказывает, когда повторить.
func (e *APIError) RateLimited() bool { return e.Status == http.StatusTooManyRequests }

// errEnvelope — формат тела ошибки на проводе.
type errEnvelope struct {
	Error      string            `json:"error"`
	Details    map[string]string `json:"details,omitempty"`
	RetryAfter int64             `json:"retryAfter,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

// Client — HTTP-клиент API комментариев.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option настраивает клиент.
type Option func(*Client)

// WithHTTPClient подменяет транспорт (таймауты, тестовые серверы).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New создаёт клиент над базовым URL API, например "https://example.com/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListComments запрашивает страницу ленты.
// page < 1 приводится к 1; limit <= 0 не передаётся (сервер подставит дефолт).
func (c *Client) ListComments(ctx context.Context, page, limit int64) (*ListResponse, error) {
	const op = "client/ListComments"

	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("page", strconv.FormatInt(page, 10))
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/comments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out ListResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// CreateComment публикует комментарий.
func (c *Client) CreateComment(ctx context.Context, username, text string) (*CreateResponse, error) {
	const op = "client/CreateComment"

	body, err := json.Marshal(map[string]string{
		"username":     username,
		"comment_text": text,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/comments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out CreateResponse
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// do выполняет запрос и декодирует либо ожидаемый ответ, либо конверт ошибки.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return apiErrorFrom(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// apiErrorFrom разбирает конверт ошибки; не-JSON тело превращается
// в APIError с текстом по статусу, чтобы вызывающий всегда получал один тип.
func apiErrorFrom(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var env errEnvelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Error != "" {
		apiErr.Message = env.Error
		apiErr.Details = env.Details
		apiErr.RequestID = env.RequestID
		if env.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(env.RetryAfter) * time.Second
		}
	}

	return apiErr
}
