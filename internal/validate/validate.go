// validate — структурные правила полей комментария.
// Единый источник правды для клиентской формы и серверного пайплайна create.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Границы полей. Длины считаются в рунах после TrimSpace.
const (
	UsernameMin = 2
	UsernameMax = 50
	CommentMin  = 10
	CommentMax  = 500
)

// usernameRe — допустимый алфавит имени: буквы/цифры/пробельные символы.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)

// FieldError — нарушение правила по конкретному полю.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Username проверяет имя. Возвращает nil, если поле валидно.
func Username(raw string) *FieldError {
	v := strings.TrimSpace(raw)

	if v == "" {
		return &FieldError{Field: "username", Reason: "username is required"}
	}

	if n := utf8.RuneCountInString(v); n < UsernameMin || n > UsernameMax {
		return &FieldError{Field: "username", Reason: "username must be between 2 and 50 characters"}
	}

	if !usernameRe.MatchString(v) {
		return &FieldError{Field: "username", Reason: "username may only contain letters, numbers and spaces"}
	}

	return nil
}

// CommentText проверяет тело комментария. Возвращает nil, если поле валидно.
func CommentText(raw string) *FieldError {
	v := strings.TrimSpace(raw)

	if v == "" {
		return &FieldError{Field: "comment_text", Reason: "comment is required"}
	}

	if n := utf8.RuneCountInString(v); n < CommentMin || n > CommentMax {
		return &FieldError{Field: "comment_text", Reason: "comment must be between 10 and 500 characters"}
	}

	return nil
}

// Fields прогоняет оба правила и возвращает все нарушения, не только первое.
func Fields(username, commentText string) []FieldError {
	var out []FieldError

	if fe := Username(username); fe != nil {
		out = append(out, *fe)
	}

	if fe := CommentText(commentText); fe != nil {
		out = append(out, *fe)
	}

	return out
}
