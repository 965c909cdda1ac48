package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const validText = "What a wonderful write-up, thank you!"

func TestForm_FieldStates(t *testing.T) {
	form := NewForm(nil, &uiRecorder{}, nil)

	// До первого ввода поля нетронуты.
	require.Equal(t, StateUntouched, form.UsernameState().State)
	require.Equal(t, StateUntouched, form.TextState().State)

	form.SetUsername("J")
	st := form.UsernameState()
	require.Equal(t, StateInvalid, st.State)
	require.Contains(t, st.Reason, "between 2 and 50")

	form.SetUsername("Jane!")
	require.Contains(t, form.UsernameState().Reason, "letters, numbers and spaces")

	form.SetUsername("Jane Doe")
	require.Equal(t, StateValid, form.UsernameState().State)

	form.SetText("too short")
	require.Equal(t, StateInvalid, form.TextState().State)

	form.SetText(validText)
	require.Equal(t, StateValid, form.TextState().State)
}

func TestForm_CharsRemaining(t *testing.T) {
	form := NewForm(nil, &uiRecorder{}, nil)

	require.Equal(t, 500, form.CharsRemaining())

	form.SetText("0123456789")
	require.Equal(t, 490, form.CharsRemaining())

	// Счётчик идёт по сырому вводу: пробелы по краям тоже символы.
	form.SetText("  hello  ")
	require.Equal(t, 491, form.CharsRemaining())

	form.SetText(strings.Repeat("a", 505))
	require.Equal(t, -5, form.CharsRemaining())
}

func TestForm_Submit_InvalidSkipsRequest(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	form := NewForm(New(srv.URL), ui, nil)

	form.SetUsername("Jane Doe")
	form.SetText("nope")
	form.Submit(context.Background())

	require.Zero(t, requests)
	require.Equal(t, StateInvalid, form.TextState().State)
	require.Len(t, ui.toastList(), 1)
	require.Contains(t, ui.toastList()[0], "error")
	// Индикация отправки не включалась вовсе.
	require.Empty(t, ui.submitting)
}

func TestForm_Submit_SuccessResetsAndRefreshesFeed(t *testing.T) {
	var listCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(CreateResponse{Message: "comment added successfully"})
		case http.MethodGet:
			listCalls++
			_ = json.NewEncoder(w).Encode(ListResponse{TotalCount: 1, Comments: []Comment{{Username: "Jane Doe"}}})
		}
	}))
	defer srv.Close()

	api := New(srv.URL)
	ui := &uiRecorder{}
	feed := NewFeed(api, ui)
	form := NewForm(api, ui, feed)

	form.SetUsername("  Jane Doe  ")
	form.SetText(validText)
	form.Submit(context.Background())

	// Поля сброшены в нетронутое состояние.
	require.Equal(t, StateUntouched, form.UsernameState().State)
	require.Equal(t, StateUntouched, form.TextState().State)
	require.Equal(t, 500, form.CharsRemaining())

	// Лента перечитана с первой страницы.
	require.Equal(t, 1, listCalls)
	require.Len(t, ui.renderCalls(), 1)

	toasts := ui.toastList()
	require.Len(t, toasts, 1)
	require.Contains(t, toasts[0], "success")

	// Индикация отправки включилась и гарантированно снялась.
	require.Equal(t, []bool{true, false}, ui.submitting)
}

func TestForm_Submit_RateLimitToastIncludesRetryHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":      "too many comments from this address, try again later",
			"retryAfter": 90,
		})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	form := NewForm(New(srv.URL), ui, nil)

	form.SetUsername("Jane Doe")
	form.SetText(validText)
	form.Submit(context.Background())

	toasts := ui.toastList()
	require.Len(t, toasts, 1)
	require.Contains(t, toasts[0], "try again later")
	require.Contains(t, toasts[0], "retry in 1m30s")
	require.Equal(t, []bool{true, false}, ui.submitting)
}

func TestForm_Submit_ServerValidationDetailsInToast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "validation failed",
			"details": map[string]string{
				"username":     "username is required",
				"comment_text": "comment must be between 10 and 500 characters",
			},
		})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	form := NewForm(New(srv.URL), ui, nil)

	form.SetUsername("Jane Doe")
	form.SetText(validText)
	form.Submit(context.Background())

	toasts := ui.toastList()
	require.Len(t, toasts, 1)
	require.Contains(t, toasts[0], "username is required")
	require.Contains(t, toasts[0], "comment must be between 10 and 500 characters")
}

func TestForm_Submit_NetworkErrorClearsSubmitting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // транспортная ошибка

	ui := &uiRecorder{}
	form := NewForm(New(srv.URL), ui, nil)

	form.SetUsername("Jane Doe")
	form.SetText(validText)
	form.Submit(context.Background())

	require.False(t, form.Submitting())
	require.Equal(t, []bool{true, false}, ui.submitting)

	toasts := ui.toastList()
	require.Len(t, toasts, 1)
	require.Contains(t, toasts[0], "failed to add comment")
}

func TestForm_Submit_DoubleSubmitIgnored(t *testing.T) {
	var mu sync.Mutex
	var posts int

	reached := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		posts++
		n := posts
		mu.Unlock()

		if n == 1 {
			close(reached)
			<-release
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateResponse{Message: "comment added successfully"})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	form := NewForm(New(srv.URL), ui, nil)

	form.SetUsername("Jane Doe")
	form.SetText(validText)

	done := make(chan struct{})
	go func() {
		form.Submit(context.Background())
		close(done)
	}()
	<-reached

	require.True(t, form.Submitting())
	form.Submit(context.Background()) // повторный клик во время отправки

	close(release)
	<-done

	mu.Lock()
	require.Equal(t, 1, posts)
	mu.Unlock()
}
