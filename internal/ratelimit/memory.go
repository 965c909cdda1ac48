package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window — счётчик одного адреса в пределах фиксированного окна.
type window struct {
	count   int64
	startAt time.Time
}

// MemoryLimiter — потокобезопасный лимитер в памяти процесса.
// Подходит для single-instance деплоя; для нескольких реплик см. RedisLimiter.
type MemoryLimiter struct {
	max    int64
	window time.Duration

	mu      sync.Mutex
	entries map[string]*window

	now func() time.Time
}

// NewMemory создаёт лимитер: не более max попыток за d с одного адреса.
func NewMemory(max int64, d time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		window:  d,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow атомарно учитывает попытку адреса и возвращает решение.
// Истёкшие окна других адресов вычищаются попутно, чтобы map не рос бесконечно.
func (l *MemoryLimiter) Allow(_ context.Context, addr string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	w, ok := l.entries[addr]
	if !ok || now.Sub(w.startAt) >= l.window {
		l.entries[addr] = &window{count: 1, startAt: now}
		return Decision{Allowed: true}, nil
	}

	w.count++
	if w.count > l.max {
		return Decision{
			Allowed:    false,
			RetryAfter: l.window - now.Sub(w.startAt),
		}, nil
	}

	return Decision{Allowed: true}, nil
}

func (l *MemoryLimiter) Close() error { return nil }

// pruneLocked удаляет окна, закончившиеся к моменту now. Вызывать под mu.
func (l *MemoryLimiter) pruneLocked(now time.Time) {
	for addr, w := range l.entries {
		if now.Sub(w.startAt) >= l.window {
			delete(l.entries, addr)
		}
	}
}
