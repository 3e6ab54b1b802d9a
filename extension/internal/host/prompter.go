package host

import (
	"context"
	"strings"
	"unicode"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
)

// FixedPrompter answers every question with a configured choice, for hosts without a user to ask.
type FixedPrompter struct {
	log logger.Logger

	answer string
}

// NewFixedPrompter creates a prompter that picks the choice matching answer. Choices match when
// they are equal ignoring case and anything but letters and digits, so "dont-ask-again" picks
// "Don't Ask Again". An answer that matches no choice dismisses the question.
func NewFixedPrompter(answer string) *FixedPrompter {
	return &FixedPrompter{
		log:    config.GetLogger("FixedPrompter "),
		answer: answer,
	}
}

func (p *FixedPrompter) ShowInformationMessage(_ context.Context, message string, _ bool, items ...string) (string, bool) {
	want := normalizeChoice(p.answer)
	for _, item := range items {
		if normalizeChoice(item) == want {
			p.log.Debug("Answering \"%s\" with \"%s\".", message, item)
			return item, true
		}
	}

	p.log.Debug("Dismissing \"%s\".", message)
	return "", false
}

func normalizeChoice(choice string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, choice)
}
