package explain

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

const (
	systemPrompt = "Ты внимательный библейский комментатор. Отвечай по-русски, опираясь на текст Писания и общепринятое христианское толкование."

	instruction = "Пожалуйста, объясни следующие библейские стихи простым и понятным языком:"
	closing     = "Дай краткое толкование, объясни контекст и практическое применение для современного человека."
)

// BuildPrompt renders verses as numbered lines between the instruction and closing request.
func BuildPrompt(ref reference.Reference, verses []domverse.Verse) domain.Prompt {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(ref.String())
	b.WriteString("\n")
	for _, v := range verses {
		b.WriteString(strings.TrimSpace(strconv.Itoa(v.Number) + ". " + v.Text))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(closing)

	return domain.Prompt{System: systemPrompt, User: b.String()}
}
