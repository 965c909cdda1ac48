// apierrors стандартизирует ответы об ошибках HTTP-слоя.
// На вход — ошибка сервисного слоя, на выход:
//   - корректный HTTP-статус;
//   - JSON-конверт {error, details?, retryAfter?} без утечки внутренних деталей.
//
// Классы ошибок:
//   - ValidationError -> 400 с перечнем нарушений по полям;
//   - ErrContentRejected -> 400 с общим сообщением (сработавший термин не раскрываем);
//   - RateLimitError -> 429 + retryAfter (сек) + заголовок Retry-After;
//   - ErrInvalidArgument -> 400;
//   - всё прочее (включая ErrInternal) -> 500/"internal error".
package apierrors

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/kssite/comments-service/internal/service"
)

// ErrorResponse — единый формат ошибки для фронта.
// RequestID прокидывается из X-Request-Id, если есть (для трассировки).
type ErrorResponse struct {
	Error      string            `json:"error"`
	Details    map[string]string `json:"details,omitempty"`
	RetryAfter int64             `json:"retryAfter,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и конверт.
//
// err == nil — программная ошибка вызова: возвращаем 500/internal,
// чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		details := make(map[string]string, len(verr.Fields))
		for _, fe := range verr.Fields {
			details[fe.Field] = fe.Reason
		}

		return http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: details,
		}
	}

	var rerr *service.RateLimitError
	if errors.As(err, &rerr) {
		return http.StatusTooManyRequests, ErrorResponse{
			Error:      "too many comments from this address, try again later",
			RetryAfter: retryAfterSeconds(rerr),
		}
	}

	switch {
	case errors.Is(err, service.ErrContentRejected):
		return http.StatusBadRequest, ErrorResponse{
			Error: "comment contains inappropriate content",
		}
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, ErrorResponse{
			Error: "invalid argument",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	if resp.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(resp.RetryAfter, 10))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// retryAfterSeconds округляет подсказку вверх до целых секунд (минимум 1).
func retryAfterSeconds(rerr *service.RateLimitError) int64 {
	secs := int64(math.Ceil(rerr.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}

	return secs
}
