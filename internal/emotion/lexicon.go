package emotion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"emocare/backend/internal/model"
)

// Class is one side of the lexicon: emoji and keyword fragments matched by substring.
type Class struct {
	Emojis   []string `yaml:"emojis"`
	Keywords []string `yaml:"keywords"`
}

// Lexicon maps an emotion tag to the fragments that signal it.
type Lexicon map[model.Emotion]Class

func DefaultLexicon() Lexicon {
	return Lexicon{
		model.EmotionHappy: {
			Emojis: []string{"😂", "🤣", "😊", "🙂", "😁", "😄", "😍", "❤️", "✨", "🙌", "🎉"},
			Keywords: []string{
				"me alegra", "felicidade", "excelente", "genial", "maravilloso", "que bien",
				"orgullo", "lograste", "me encanta", "bravo", "gracias",
			},
		},
		model.EmotionSad: {
			Emojis: []string{"😞", "😔", "😢", "😭", "😓", "😩", "😡", "💔"},
			Keywords: []string{
				"lo siento", "lamento", "triste", "dificil", "complicado", "preocup",
				"ansiedad", "deprim", "fracaso", "mal", "duro", "duele",
			},
		},
	}
}

// LoadLexicon reads a YAML file keyed by emotion tag. Tags missing from the
// file keep their default fragments.
func LoadLexicon(path string) (Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var parsed map[string]Class
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lexicon := DefaultLexicon()
	for tag, class := range parsed {
		emotion, ok := model.ParseEmotion(tag)
		if !ok {
			return nil, fmt.Errorf("unknown emotion tag %q in lexicon", tag)
		}
		lexicon[emotion] = class
	}
	return lexicon, nil
}
