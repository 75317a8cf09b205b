package responder

import (
	"context"
	"encoding/json"
	"strings"
)

// MockResponder answers locally for development without a model provider.
type MockResponder struct{}

var mockCrisisHints = []string{"suicid", "matarme", "hacerme daño", "no quiero vivir", "autolesion"}

func (MockResponder) Respond(_ context.Context, req Request) (Output, error) {
	last := ""
	for i := len(req.Conversation) - 1; i >= 0; i-- {
		if req.Conversation[i].Role == RoleUser {
			last = strings.TrimSpace(req.Conversation[i].Content)
			break
		}
	}
	lowered := strings.ToLower(last)

	crisis := false
	for _, hint := range mockCrisisHints {
		if strings.Contains(lowered, hint) {
			crisis = true
			break
		}
	}

	emotion := "feliz"
	answer := "Gracias por compartirlo. ¿Qué te gustaría explorar de lo que sientes ahora?"
	if crisis {
		emotion = "triste"
		answer = "Lamento mucho que estés pasando por esto. No estás sola ni solo: busca ayuda profesional o llama a emergencias ahora."
	}

	encoded, err := json.Marshal(map[string]any{"answer": answer, "emotion": emotion, "crisis": crisis})
	if err != nil {
		return Output{}, err
	}
	return Output{Text: string(encoded), Model: "mock"}, nil
}
