// Package intake holds the guards applied to anonymous public submissions:
// text sanitizing, email shape checks, client identification and rate
// limiting.
package intake

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Per-field caps, in runes.
const (
	MaxName    = 100
	MaxPhone   = 20
	MaxSubject = 200
	MaxMessage = 5000
	MaxTopic   = 120
	MaxEmail   = 254
	MaxSource  = 64
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// injectionPhrases are rejected in AI topics, matched case-insensitively
// after whitespace is collapsed.
var injectionPhrases = []string{
	"ignore previous",
	"ignore all previous",
	"disregard instructions",
	"do not follow",
}

var validate = validator.New()

// Sanitize strips HTML tags and stray angle brackets, collapses runs of
// whitespace and control characters into one space, trims, and truncates the
// result to maxLen runes. Sanitize(Sanitize(s, n), n) == Sanitize(s, n).
func Sanitize(raw string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return truncate(clean(raw), maxLen)
}

// SanitizeTopic cleans an AI-generation topic and caps it at MaxTopic runes.
// ok is false when the topic contains a prompt-injection phrase. An empty
// topic is valid.
func SanitizeTopic(raw string) (topic string, ok bool) {
	cleaned := clean(raw)
	lower := strings.ToLower(cleaned)
	for _, p := range injectionPhrases {
		if strings.Contains(lower, p) {
			return "", false
		}
	}
	return truncate(cleaned, MaxTopic), true
}

// ValidEmail reports whether s has the shape of an email address.
func ValidEmail(s string) bool {
	if len(s) > MaxEmail {
		return false
	}
	return validate.Var(s, "required,email") == nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clean(raw string) string {
	s := tagPattern.ReplaceAllString(raw, "")
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r == '<' || r == '>':
			continue
		case unicode.IsSpace(r) || unicode.IsControl(r):
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRightFunc(string(runes[:maxLen]), unicode.IsSpace)
}
