// ratelimit — ограничение числа публикаций с одного сетевого адреса.
// Окно фиксированное: не более max попыток за window; считаются попытки,
// а не принятые комментарии, поэтому невалидные payload'ы тоже расходуют квоту.
package ratelimit

import (
	"context"
	"time"
)

// Decision — результат проверки адреса.
// При отказе RetryAfter содержит остаток окна.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter — инжектируемый сервис лимитирования.
// Allow атомарно инкрементирует счётчик адреса и сообщает решение.
type Limiter interface {
	Allow(ctx context.Context, addr string) (Decision, error)
	Close() error
}
