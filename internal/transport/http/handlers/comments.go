package handlers

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kssite/comments-service/internal/models"
	"github.com/kssite/comments-service/internal/service"
	"github.com/kssite/comments-service/internal/transport/http/apierrors"
)

// Comment — публичное представление комментария.
// ip_address намеренно отсутствует: поле только для модерации
// и не должно попадать в браузер.
type Comment struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"comment_text"`
	Timestamp string `json:"timestamp"` // ISO-8601 (RFC 3339), UTC
	Likes     int64  `json:"likes"`
}

func commentFromModel(m models.Comment) Comment {
	return Comment{
		ID:        m.ID,
		Username:  m.Username,
		Text:      m.Text,
		Timestamp: m.CreatedAt.UTC().Format(time.RFC3339),
		Likes:     m.Likes,
	}
}

// ListCommentsResponse — страница ленты.
type ListCommentsResponse struct {
	Comments    []Comment `json:"comments"`
	TotalCount  int64     `json:"totalCount"`
	CurrentPage int64     `json:"currentPage"`
	TotalPages  int64     `json:"totalPages"`
	HasMore     bool      `json:"hasMore"`
}

// CreateCommentRequest — тело POST /comments.
type CreateCommentRequest struct {
	Username string `json:"username"`
	Text     string `json:"comment_text"`
}

// CreateCommentResponse — ответ 201 на публикацию.
type CreateCommentResponse struct {
	Message string  `json:"message"`
	Comment Comment `json:"comment"`
}

// MessageResponse — ответ операций без полезной нагрузки.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListComments обрабатывает GET /comments?page=&limit=.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	in := service.ListInput{Page: 1}

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			apierrors.WriteError(w, r, service.ErrInvalidArgument)
			return
		}

		in.Page = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			apierrors.WriteError(w, r, service.ErrInvalidArgument)
			return
		}

		in.Limit = n
	}

	res, err := h.Service.ListComments(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := ListCommentsResponse{
		Comments:    make([]Comment, 0, len(res.Comments)),
		TotalCount:  res.TotalCount,
		CurrentPage: res.CurrentPage,
		TotalPages:  res.TotalPages,
		HasMore:     res.HasMore,
	}
	for _, m := range res.Comments {
		out.Comments = append(out.Comments, commentFromModel(m))
	}

	writeJSON(w, http.StatusOK, out)
}

// CreateComment обрабатывает POST /comments.
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in CreateCommentRequest
	if err := decodeJSON(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	comment, err := h.Service.CreateComment(r.Context(), service.CreateInput{
		Username:   in.Username,
		Text:       in.Text,
		RemoteAddr: remoteAddr(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateCommentResponse{
		Message: "comment added successfully",
		Comment: commentFromModel(*comment),
	})
}

// DeleteComment обрабатывает DELETE /comments/{id}.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, service.ErrInvalidArgument)
		return
	}

	if err := h.Service.DeleteComment(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "comment deleted"})
}

// remoteAddr достаёт адрес клиента: RealIP-мидлвар уже нормализовал RemoteAddr,
// но на случай прямого вызова без цепочки отрезаем порт сами.
func remoteAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
