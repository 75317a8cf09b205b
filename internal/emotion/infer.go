// Package emotion is a best-effort keyword/emoji sentiment guess used when the
// responder does not return a usable emotion tag. It is approximate by nature.
package emotion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"emocare/backend/internal/model"
)

type Inferrer struct {
	positive []string
	negative []string
}

func NewInferrer(lexicon Lexicon) *Inferrer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Inferrer{
		positive: fragments(lexicon[model.EmotionHappy]),
		negative: fragments(lexicon[model.EmotionSad]),
	}
}

// Infer returns feliz on positive-only matches, triste on negative-only
// matches, and feliz when both or neither side matches.
func (i *Inferrer) Infer(text string) model.Emotion {
	normalized := Normalize(text)
	if normalized == "" {
		return model.EmotionHappy
	}
	positive := containsAny(normalized, i.positive)
	negative := containsAny(normalized, i.negative)
	if negative && !positive {
		return model.EmotionSad
	}
	return model.EmotionHappy
}

// Normalize lower-cases text and strips combining marks, so "Difícil" matches "dificil".
func Normalize(text string) string {
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(chain, text)
	if err != nil {
		stripped = text
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

func fragments(class Class) []string {
	out := make([]string, 0, len(class.Emojis)+len(class.Keywords))
	for _, item := range append(append([]string{}, class.Emojis...), class.Keywords...) {
		if normalized := Normalize(item); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func containsAny(text string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(text, candidate) {
			return true
		}
	}
	return false
}
