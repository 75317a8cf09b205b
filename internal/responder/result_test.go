package responder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Result
	}{
		{
			name: "structured",
			text: `{"answer":"Me alegra mucho","emotion":"feliz","crisis":false}`,
			want: Structured{Answer: "Me alegra mucho", Emotion: "feliz", Crisis: false},
		},
		{
			name: "unknown emotion passes through",
			text: `{"answer":" Aquí estoy ","emotion":"Bogus","crisis":true}`,
			want: Structured{Answer: "Aquí estoy", Emotion: "bogus", Crisis: true},
		},
		{
			name: "string crisis flag",
			text: `{"answer":"ok","emotion":"triste","crisis":"true"}`,
			want: Structured{Answer: "ok", Emotion: "triste", Crisis: true},
		},
		{
			name: "missing crisis defaults false",
			text: `{"answer":"ok","emotion":"triste"}`,
			want: Structured{Answer: "ok", Emotion: "triste"},
		},
		{
			name: "fenced json",
			text: "```json\n{\"answer\":\"hola\",\"emotion\":\"feliz\",\"crisis\":false}\n```",
			want: Structured{Answer: "hola", Emotion: "feliz"},
		},
		{
			name: "plain text",
			text: "  Estoy aquí contigo.  ",
			want: Raw{Text: "Estoy aquí contigo."},
		},
		{
			name: "truncated json",
			text: `{"answer":"hola",`,
			want: Raw{Text: `{"answer":"hola",`},
		},
		{
			name: "object without answer keeps crisis",
			text: `{"emotion":"triste","crisis":true}`,
			want: Structured{Emotion: "triste", Crisis: true},
		},
		{
			name: "null answer",
			text: `{"answer":null,"crisis":false}`,
			want: Structured{},
		},
		{
			name: "trailing content",
			text: `{"answer":"a"} {"answer":"b"}`,
			want: Raw{Text: `{"answer":"a"} {"answer":"b"}`},
		},
		{
			name: "json array",
			text: `["hola"]`,
			want: Raw{Text: `["hola"]`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseOutput(tc.text))
		})
	}
}
