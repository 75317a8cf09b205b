package responder

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Result is either Structured or Raw.
type Result interface {
	isResult()
}

// Structured is a reply that arrived as the requested JSON object. Emotion is
// passed through unvalidated.
type Structured struct {
	Answer  string
	Emotion string
	Crisis  bool
}

// Raw is model text that could not be read as the JSON object.
type Raw struct {
	Text string
}

func (Structured) isResult() {}
func (Raw) isResult()        {}

type structuredPayload struct {
	Answer  string   `json:"answer"`
	Emotion string   `json:"emotion"`
	Crisis  flexBool `json:"crisis"`
}

// ParseOutput reads text as {answer, emotion, crisis}, tolerating a markdown
// code fence around it. Any single JSON object is Structured, with absent
// fields left empty. Anything else becomes Raw.
func ParseOutput(text string) Result {
	trimmed := strings.TrimSpace(text)
	candidate := stripCodeFence(trimmed)

	var payload structuredPayload
	decoder := json.NewDecoder(strings.NewReader(candidate))
	if !strings.HasPrefix(candidate, "{") || decoder.Decode(&payload) != nil {
		return Raw{Text: trimmed}
	}
	if decoder.More() {
		return Raw{Text: trimmed}
	}
	return Structured{
		Answer:  strings.TrimSpace(payload.Answer),
		Emotion: strings.ToLower(strings.TrimSpace(payload.Emotion)),
		Crisis:  bool(payload.Crisis),
	}
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		body = body[newline+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// flexBool accepts true/false as JSON booleans or strings; anything else is false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch strings.ToLower(strings.Trim(string(trimmed), `"`)) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}
