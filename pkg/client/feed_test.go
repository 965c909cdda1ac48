package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// uiRecorder — тестовая реализация UI: записывает все вызовы.
type uiRecorder struct {
	mu         sync.Mutex
	renders    []renderCall
	empty      int
	noMore     int
	toasts     []string
	submitting []bool
}

type renderCall struct {
	usernames []string
	replace   bool
}

func (u *uiRecorder) RenderComments(views []CommentView, replace bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Username)
	}
	u.renders = append(u.renders, renderCall{usernames: names, replace: replace})
}

func (u *uiRecorder) ShowEmpty()  { u.mu.Lock(); u.empty++; u.mu.Unlock() }
func (u *uiRecorder) ShowNoMore() { u.mu.Lock(); u.noMore++; u.mu.Unlock() }

func (u *uiRecorder) Toast(kind ToastKind, msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.toasts = append(u.toasts, string(kind)+": "+msg)
}

func (u *uiRecorder) SetSubmitting(active bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.submitting = append(u.submitting, active)
}

func (u *uiRecorder) renderCalls() []renderCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]renderCall(nil), u.renders...)
}

func (u *uiRecorder) toastList() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.toasts...)
}

// feedPagesServer раздаёт фиксированный набор из total комментариев
// постранично, «новые первыми», по limit штук.
func feedPagesServer(t *testing.T, total, limit int64) (*httptest.Server, *int64) {
	t.Helper()

	var requests int64
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
		if page < 1 {
			page = 1
		}

		offset := (page - 1) * limit
		comments := []Comment{}
		for i := offset; i < total && i < offset+limit; i++ {
			comments = append(comments, Comment{
				ID:        strconv.FormatInt(i, 10),
				Username:  "user" + strconv.FormatInt(i, 10),
				Text:      "comment body long enough",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}

		_ = json.NewEncoder(w).Encode(ListResponse{
			Comments:    comments,
			TotalCount:  total,
			CurrentPage: page,
			TotalPages:  (total + limit - 1) / limit,
			HasMore:     offset+limit < total,
		})
	}))

	return srv, &requests
}

func TestFeed_LoadInitial_RendersFirstPage(t *testing.T) {
	srv, _ := feedPagesServer(t, 12, 5)
	defer srv.Close()

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5))
	feed.LoadInitial(context.Background())

	calls := ui.renderCalls()
	require.Len(t, calls, 1)
	require.True(t, calls[0].replace)
	require.Equal(t, []string{"user0", "user1", "user2", "user3", "user4"}, calls[0].usernames)
	require.True(t, feed.HasMore())
	require.False(t, feed.Loading())
}

func TestFeed_Empty_ShowsPlaceholder(t *testing.T) {
	srv, _ := feedPagesServer(t, 0, 5)
	defer srv.Close()

	ui := &uiRecorder{}
	NewFeed(New(srv.URL), ui, WithPageLimit(5)).LoadInitial(context.Background())

	require.Equal(t, 1, ui.empty)
	require.Equal(t, 0, ui.noMore)
}

func TestFeed_Scroll_LoadsNextPages(t *testing.T) {
	srv, requests := feedPagesServer(t, 12, 5)
	defer srv.Close()

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5))
	ctx := context.Background()

	feed.LoadInitial(ctx)

	// Далеко до низа — догрузки нет.
	feed.HandleScroll(ctx, 500)
	require.EqualValues(t, 1, *requests)

	// В пределах порога — вторая страница дописывается.
	feed.HandleScroll(ctx, 80)
	calls := ui.renderCalls()
	require.Len(t, calls, 2)
	require.False(t, calls[1].replace)
	require.Equal(t, []string{"user5", "user6", "user7", "user8", "user9"}, calls[1].usernames)
	require.True(t, feed.HasMore())

	// Последняя страница: hasMore опускается, показывается «больше нет».
	feed.HandleScroll(ctx, 0)
	require.False(t, feed.HasMore())
	require.Equal(t, 1, ui.noMore)

	// Дальше скроллить бесполезно — запросов больше не уходит.
	feed.HandleScroll(ctx, 0)
	require.EqualValues(t, 3, *requests)
}

func TestFeed_Scroll_SuppressedWhileLoading(t *testing.T) {
	var mu sync.Mutex
	var requests int

	reached := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()

		if n == 2 {
			close(reached)
			<-release // страница 2 «висит» в полёте
		}

		_ = json.NewEncoder(w).Encode(ListResponse{
			Comments:   []Comment{{ID: "x", Username: "user"}},
			TotalCount: 100,
			HasMore:    true,
		})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5))
	ctx := context.Background()

	feed.LoadInitial(ctx)

	done := make(chan struct{})
	go func() {
		feed.HandleScroll(ctx, 50)
		close(done)
	}()
	<-reached

	// Пока страница в полёте, повторные события прокрутки игнорируются.
	feed.HandleScroll(ctx, 0)
	feed.HandleScroll(ctx, 0)

	close(release)
	<-done

	mu.Lock()
	require.Equal(t, 2, requests)
	mu.Unlock()
}

func TestFeed_Refresh_DiscardsStaleResponse(t *testing.T) {
	var mu sync.Mutex
	var requests int

	reached := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()

		name := "fresh"
		if n == 1 {
			name = "stale"
			close(reached)
			<-release
		}

		_ = json.NewEncoder(w).Encode(ListResponse{
			Comments:   []Comment{{ID: "x", Username: name}},
			TotalCount: 1,
		})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5))
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		feed.LoadInitial(ctx) // первый запрос повиснет
		close(done)
	}()
	<-reached

	feed.Refresh(ctx) // новое поколение, отвечает сразу

	close(release)
	<-done

	// Доехавший позже устаревший ответ не перерисовал ленту.
	calls := ui.renderCalls()
	require.Len(t, calls, 1)
	require.Equal(t, []string{"fresh"}, calls[0].usernames)
	require.False(t, feed.Loading())
}

// Refresh, случившийся после ответа сервера, но до отрисовки порции,
// тоже обесценивает её: устаревший append не должен красить ленту
// поверх свежей перерисовки.
func TestFeed_Refresh_BetweenResponseAndRender_DiscardsStalePage(t *testing.T) {
	var srvMu sync.Mutex
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srvMu.Lock()
		requests++
		n := requests
		srvMu.Unlock()

		name := map[int]string{1: "initial", 2: "stale", 3: "fresh"}[n]
		_ = json.NewEncoder(w).Encode(ListResponse{
			Comments:   []Comment{{ID: "x", Username: name}},
			TotalCount: 100,
			HasMore:    true,
		})
	}))
	defer srv.Close()

	// Часы — точка между получением ответа и отрисовкой: второй вызов
	// (догрузка страницы) повисает, пока не доедет Refresh.
	var clockMu sync.Mutex
	var clockCalls int
	reached := make(chan struct{})
	release := make(chan struct{})

	clock := func() time.Time {
		clockMu.Lock()
		clockCalls++
		n := clockCalls
		clockMu.Unlock()

		if n == 2 {
			close(reached)
			<-release
		}

		return time.Now()
	}

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5), WithClock(clock))
	ctx := context.Background()

	feed.LoadInitial(ctx)

	done := make(chan struct{})
	go func() {
		feed.HandleScroll(ctx, 0)
		close(done)
	}()
	<-reached

	feed.Refresh(ctx)

	close(release)
	<-done

	// Порция "stale" не дошла до UI; последней отрисована свежая перерисовка.
	calls := ui.renderCalls()
	require.Len(t, calls, 2)
	require.Equal(t, []string{"initial"}, calls[0].usernames)
	require.Equal(t, []string{"fresh"}, calls[1].usernames)
	require.True(t, calls[1].replace)
	require.False(t, feed.Loading())
}

func TestFeed_FetchError_RollsBackAndRetries(t *testing.T) {
	var mu sync.Mutex
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()

		// Второй запрос (первая догрузка) падает, дальше сервер здоров.
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
			return
		}

		page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
		_ = json.NewEncoder(w).Encode(ListResponse{
			Comments:    []Comment{{ID: "x", Username: "page" + strconv.FormatInt(page, 10)}},
			TotalCount:  100,
			CurrentPage: page,
			HasMore:     true,
		})
	}))
	defer srv.Close()

	ui := &uiRecorder{}
	feed := NewFeed(New(srv.URL), ui, WithPageLimit(5))
	ctx := context.Background()

	feed.LoadInitial(ctx)

	// Ошибка догрузки: тост, состояние loading снято, страница откатилась.
	feed.HandleScroll(ctx, 0)
	require.False(t, feed.Loading())

	toasts := ui.toastList()
	require.Len(t, toasts, 1)
	require.Contains(t, toasts[0], "error")

	// Повторный скролл пробует ту же вторую страницу и успевает.
	feed.HandleScroll(ctx, 0)
	calls := ui.renderCalls()
	require.Equal(t, []string{"page2"}, calls[len(calls)-1].usernames)
}
