package client

import (
	"context"
	"sync"
	"time"
)

// ScrollThreshold — за сколько пикселей до низа ленты начинается
// догрузка следующей страницы.
const ScrollThreshold = 100

// Feed — state-машина ленты с бесконечной прокруткой.
//
// Инварианты:
//   - в полёте не больше одного запроса страницы (loading — семафор);
//   - после Refresh ответы запросов, начатых до него, отбрасываются
//     (счётчик поколений), лента не перемешивает старые и новые данные;
//   - порядок страниц монотонный: HandleScroll двигает currentPage
//     строго на единицу и только когда предыдущая страница доехала.
type Feed struct {
	api *Client
	ui  UI

	limit int64
	now   func() time.Time

	mu          sync.Mutex
	currentPage int64
	hasMore     bool
	loading     bool
	gen         uint64
}

// FeedOption настраивает ленту.
type FeedOption func(*Feed)

// WithPageLimit задаёт размер страницы (0 — серверный дефолт).
func WithPageLimit(limit int64) FeedOption {
	return func(f *Feed) { f.limit = limit }
}

// WithClock подменяет источник времени (для тестов TimeAgo).
func WithClock(now func() time.Time) FeedOption {
	return func(f *Feed) { f.now = now }
}

// NewFeed создаёт ленту поверх API-клиента и поверхности отображения.
func NewFeed(api *Client, ui UI, opts ...FeedOption) *Feed {
	f := &Feed{
		api:     api,
		ui:      ui,
		now:     time.Now,
		hasMore: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// LoadInitial — первая загрузка ленты.
func (f *Feed) LoadInitial(ctx context.Context) {
	f.Refresh(ctx)
}

// Refresh сбрасывает ленту на первую страницу и перечитывает её.
// Запросы, начатые до Refresh, своё поколение проигрывают и игнорируются.
func (f *Feed) Refresh(ctx context.Context) {
	f.mu.Lock()
	f.gen++
	f.currentPage = 1
	f.hasMore = true
	f.loading = true
	gen := f.gen
	f.mu.Unlock()

	f.fetch(ctx, 1, gen, true)
}

// HandleScroll — обработчик прокрутки. remaining — расстояние до низа
// ленты в пикселях. Догрузка стартует при remaining <= ScrollThreshold,
// если есть следующая страница и ничего не грузится прямо сейчас.
func (f *Feed) HandleScroll(ctx context.Context, remaining float64) {
	f.mu.Lock()
	if remaining > ScrollThreshold || !f.hasMore || f.loading {
		f.mu.Unlock()
		return
	}

	f.currentPage++
	f.loading = true
	page := f.currentPage
	gen := f.gen
	f.mu.Unlock()

	f.fetch(ctx, page, gen, false)
}

// Loading — идёт ли сейчас загрузка страницы.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// HasMore — остались ли незагруженные страницы.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// fetch выполняет запрос страницы и применяет результат, если поколение
// ленты не сменилось за время полёта.
func (f *Feed) fetch(ctx context.Context, page int64, gen uint64, replace bool) {
	resp, err := f.api.ListComments(ctx, page, f.limit)

	f.mu.Lock()
	if gen != f.gen {
		// Лента уже сброшена: результат устарел, состояние не трогаем.
		f.mu.Unlock()
		return
	}

	f.loading = false

	if err != nil {
		// Откатываем страницу, чтобы следующий скролл повторил попытку.
		if !replace && f.currentPage == page {
			f.currentPage--
		}
		f.mu.Unlock()

		f.ui.Toast(ToastError, "failed to load comments, please try again")
		return
	}

	f.hasMore = resp.HasMore
	f.mu.Unlock()

	now := f.now()
	views := make([]CommentView, 0, len(resp.Comments))
	for _, c := range resp.Comments {
		views = append(views, NewCommentView(c, now))
	}

	// Пока готовились вьюхи, мог случиться Refresh: поколение перепроверяется
	// непосредственно перед отдачей в UI, иначе устаревшая порция могла бы
	// перерисоваться поверх свежей. Вызовы UI идут под mu, поэтому реализация
	// UI не должна синхронно дергать методы Feed.
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}

	f.ui.RenderComments(views, replace)

	if replace && resp.TotalCount == 0 {
		f.ui.ShowEmpty()
		return
	}
	if !resp.HasMore {
		f.ui.ShowNoMore()
	}
}
