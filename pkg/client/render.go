package client

import (
	"fmt"
	"html"
	"time"
)

// CommentView — комментарий, подготовленный к показу: поля экранированы
// для HTML, таймстемп переведён в относительную форму.
type CommentView struct {
	ID       string
	Username string
	Text     string
	TimeAgo  string
	Likes    int64
}

// ToastKind — тон всплывающего уведомления.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// UI — поверхность отображения, которую реализует конкретный фронт
// (шаблонный рендер, TUI, тесты). Feed и Form вызывают её методы,
// сами состоянием DOM не владеют.
type UI interface {
	// RenderComments показывает порцию комментариев.
	// replace == true — лента перерисовывается с нуля, иначе порция дописывается.
	RenderComments(views []CommentView, replace bool)
	// ShowEmpty — лента пуста, показать приглашение оставить первый комментарий.
	ShowEmpty()
	// ShowNoMore — все страницы загружены.
	ShowNoMore()
	// Toast — всплывающее уведомление.
	Toast(kind ToastKind, message string)
	// SetSubmitting — индикация отправки формы (блокировка кнопки).
	SetSubmitting(active bool)
}

// NewCommentView экранирует пользовательские поля и форматирует время.
func NewCommentView(c Comment, now time.Time) CommentView {
	return CommentView{
		ID:       c.ID,
		Username: html.EscapeString(c.Username),
		Text:     html.EscapeString(c.Text),
		TimeAgo:  TimeAgo(c.Timestamp, now),
		Likes:    c.Likes,
	}
}

// TimeAgo — относительное время публикации:
// «just now» до минуты, минуты до часа, часы до суток, дни до недели,
// дальше — абсолютная дата. Неразборчивый таймстемп возвращается как есть.
func TimeAgo(timestamp string, now time.Time) string {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}

	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return ts.Format("Jan 2, 2006")
	}
}
