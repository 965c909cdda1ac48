// moderation — контентная политика: обнаружение и маскирование нежелательной лексики.
package moderation

import (
	goaway "github.com/TwiN/go-away"
)

// Policy — обёртка над словарным детектором.
// Проверка нечувствительна к регистру; при маскировании запрещённые
// термины заменяются звёздочками, остальной текст не меняется.
type Policy struct {
	detector *goaway.ProfanityDetector
}

// New создаёт политику со стандартным словарём.
func New() *Policy {
	return &Policy{
		detector: goaway.NewProfanityDetector().
			WithSanitizeLeetSpeak(true).
			WithSanitizeSpecialCharacters(true).
			WithSanitizeAccents(true),
	}
}

// Allowed сообщает, проходит ли текст политику.
func (p *Policy) Allowed(s string) bool {
	return !p.detector.IsProfane(s)
}

// Sanitize возвращает копию текста с замаскированными запрещёнными терминами.
func (p *Policy) Sanitize(s string) string {
	return p.detector.Censor(s)
}
