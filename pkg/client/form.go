package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kssite/comments-service/internal/validate"
)

// ValidationState — состояние поля формы.
// Нетронутое поле ошибкой не считается: подсветка появляется только
// после первого ввода.
type ValidationState int

const (
	StateUntouched ValidationState = iota
	StateValid
	StateInvalid
)

// FieldState — состояние одного поля с причиной, если оно невалидно.
type FieldState struct {
	State  ValidationState
	Reason string
}

// Form — state-машина формы отправки комментария.
// Правила полей совпадают с серверными, так что прошедшая локальную
// проверку форма отклоняется сервером только по контентной политике
// или rate limit.
type Form struct {
	api  *Client
	ui   UI
	feed *Feed // после успешной публикации лента перечитывается

	mu            sync.Mutex
	username      string
	text          string
	usernameState FieldState
	textState     FieldState
	submitting    bool
}

// NewForm создаёт форму; feed может быть nil, тогда после публикации
// лента не обновляется.
func NewForm(api *Client, ui UI, feed *Feed) *Form {
	return &Form{api: api, ui: ui, feed: feed}
}

// SetUsername — ввод в поле имени; поле валидируется на каждом изменении.
func (f *Form) SetUsername(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.username = s
	f.usernameState = fieldState(validate.Username(strings.TrimSpace(s)))
}

// SetText — ввод в поле комментария.
func (f *Form) SetText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.text = s
	f.textState = fieldState(validate.CommentText(strings.TrimSpace(s)))
}

// UsernameState — текущее состояние поля имени.
func (f *Form) UsernameState() FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usernameState
}

// TextState — текущее состояние поля комментария.
func (f *Form) TextState() FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textState
}

// CharsRemaining — сколько символов осталось до предела длины комментария.
// Считается по сырому вводу как есть (пробелы по краям учитываются) —
// счётчик живой и отражает ровно то, что набрано в поле.
// Отрицательное значение означает перебор.
func (f *Form) CharsRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validate.CommentMax - len([]rune(f.text))
}

// Submitting — идёт ли отправка прямо сейчас.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit — отправка формы.
//
// Последовательность:
//  1. повторный Submit во время отправки игнорируется;
//  2. оба поля валидируются; при нарушениях — toast и выход без запроса;
//  3. на время запроса включается индикация отправки, она гарантированно
//     снимается на любом исходе;
//  4. успех — поля сбрасываются в нетронутое состояние, лента перечитывается;
//  5. отказ сервера — сообщение конверта показывается как есть
//     (для 429 дополняется подсказкой, когда повторить).
func (f *Form) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return
	}

	username := strings.TrimSpace(f.username)
	text := strings.TrimSpace(f.text)

	if fields := validate.Fields(username, text); len(fields) > 0 {
		f.applyViolationsLocked(fields)
		f.mu.Unlock()

		f.ui.Toast(ToastError, "please fix the highlighted fields")
		return
	}

	f.submitting = true
	f.mu.Unlock()

	f.ui.SetSubmitting(true)
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.ui.SetSubmitting(false)
	}()

	_, err := f.api.CreateComment(ctx, username, text)
	if err != nil {
		f.ui.Toast(ToastError, submitErrorMessage(err))
		return
	}

	f.mu.Lock()
	f.username = ""
	f.text = ""
	f.usernameState = FieldState{}
	f.textState = FieldState{}
	f.mu.Unlock()

	f.ui.Toast(ToastSuccess, "comment added successfully")

	if f.feed != nil {
		f.feed.Refresh(ctx)
	}
}

// applyViolationsLocked переносит нарушения в состояния полей.
func (f *Form) applyViolationsLocked(fields []validate.FieldError) {
	f.usernameState = FieldState{State: StateValid}
	f.textState = FieldState{State: StateValid}

	for _, fe := range fields {
		st := FieldState{State: StateInvalid, Reason: fe.Reason}
		switch fe.Field {
		case "username":
			f.usernameState = st
		case "comment_text":
			f.textState = st
		}
	}
}

// submitErrorMessage — текст уведомления по ошибке публикации.
func submitErrorMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "failed to add comment, please try again"
	}

	if apiErr.RateLimited() && apiErr.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry in %s)", apiErr.Message, apiErr.RetryAfter)
	}

	if len(apiErr.Details) > 0 {
		reasons := make([]string, 0, len(apiErr.Details))
		for _, reason := range apiErr.Details {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		return strings.Join(reasons, "; ")
	}

	return apiErr.Message
}

func fieldState(ferr *validate.FieldError) FieldState {
	if ferr != nil {
		return FieldState{State: StateInvalid, Reason: ferr.Reason}
	}

	return FieldState{State: StateValid}
}
