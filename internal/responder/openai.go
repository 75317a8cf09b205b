package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OpenAIResponder talks to an OpenAI-compatible /responses endpoint and asks
// for a JSON object reply.
type OpenAIResponder struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
}

func NewOpenAIResponder(apiKey, baseURL, model string, maxOutputTokens int, timeout time.Duration) *OpenAIResponder {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAIResponder{
		apiKey:          strings.TrimSpace(apiKey),
		baseURL:         strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:           strings.TrimSpace(model),
		maxOutputTokens: maxOutputTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

type inputText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inputBlock struct {
	Role    string      `json:"role"`
	Content []inputText `json:"content"`
}

func (c *OpenAIResponder) Respond(ctx context.Context, req Request) (Output, error) {
	if c.apiKey == "" {
		return Output{}, errors.New("OPENAI_API_KEY is not configured")
	}
	if c.baseURL == "" {
		return Output{}, errors.New("OPENAI_BASE_URL is not configured")
	}
	if c.model == "" {
		return Output{}, errors.New("OPENAI_MODEL is not configured")
	}

	hasAssistantTurn := false
	for _, turn := range req.Conversation {
		if turn.Role == RoleAssistant {
			hasAssistantTurn = true
			break
		}
	}

	statusCode, body, err := c.callWithRetry(ctx, c.buildInput(req, true))
	if err != nil {
		return Output{}, err
	}
	if statusCode == http.StatusBadRequest && hasAssistantTurn && rejectsAssistantInput(body) {
		statusCode, body, err = c.callWithRetry(ctx, c.buildInput(req, false))
		if err != nil {
			return Output{}, err
		}
	}
	if statusCode < 200 || statusCode >= 300 {
		return Output{}, fmt.Errorf("openai responses error (%d): %s", statusCode, truncateForLog(string(body), 400))
	}

	parsed := parseJSONObject(body)
	answer := extractResponseAnswer(parsed)
	if strings.TrimSpace(answer) == "" {
		if isMaxOutputTokenIncomplete(parsed) {
			return Output{}, errors.New("openai response incomplete due max_output_tokens")
		}
		return Output{}, ErrEmptyOutput
	}

	modelName := strings.TrimSpace(toString(parsed["model"]))
	if modelName == "" {
		modelName = c.model
	}
	return Output{Text: answer, Model: modelName}, nil
}

func (c *OpenAIResponder) buildInput(req Request, includeAssistantTurns bool) []inputBlock {
	input := make([]inputBlock, 0, len(req.Conversation)+1)
	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		input = append(input, inputBlock{
			Role:    "system",
			Content: []inputText{{Type: "input_text", Text: instruction}},
		})
	}
	for _, turn := range req.Conversation {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			continue
		}
		if turn.Role == RoleAssistant && !includeAssistantTurns {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		contentType := "input_text"
		if turn.Role == RoleAssistant {
			contentType = "output_text"
		}
		input = append(input, inputBlock{
			Role:    turn.Role,
			Content: []inputText{{Type: contentType, Text: content}},
		})
	}
	return input
}

// callWithRetry retries once on a 5xx answer.
func (c *OpenAIResponder) callWithRetry(ctx context.Context, input []inputBlock) (int, []byte, error) {
	statusCode, body, err := c.call(ctx, input)
	if err == nil && statusCode >= http.StatusInternalServerError {
		statusCode, body, err = c.call(ctx, input)
	}
	return statusCode, body, err
}

func (c *OpenAIResponder) call(ctx context.Context, input []inputBlock) (int, []byte, error) {
	payload := map[string]any{
		"model":             c.model,
		"input":             input,
		"max_output_tokens": c.maxOutputTokens,
		"text": map[string]any{
			"format": map[string]any{"type": "json_object"},
		},
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(bodyRaw))
	if err != nil {
		return 0, nil, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}
	return response.StatusCode, responseBody, nil
}

func rejectsAssistantInput(body []byte) bool {
	text := string(body)
	return strings.Contains(text, "Invalid value: 'input_text'") &&
		strings.Contains(text, "Supported values are: 'output_text' and 'refusal'")
}

func extractResponseAnswer(data map[string]any) string {
	if direct := strings.TrimSpace(toString(data["output_text"])); direct != "" {
		return direct
	}

	outputs, ok := data["output"].([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0)
	for _, item := range outputs {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contentList, ok := block["content"].([]any)
		if !ok {
			continue
		}
		for _, contentItem := range contentList {
			contentMap, ok := contentItem.(map[string]any)
			if !ok {
				continue
			}
			contentType := strings.ToLower(strings.TrimSpace(toString(contentMap["type"])))
			if contentType != "output_text" && contentType != "text" {
				continue
			}
			if text := strings.TrimSpace(toString(contentMap["text"])); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func isMaxOutputTokenIncomplete(parsed map[string]any) bool {
	details, ok := parsed["incomplete_details"].(map[string]any)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(toString(details["reason"])), "max_output_tokens")
}

func parseJSONObject(input []byte) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(input, &result); err != nil || result == nil {
		return map[string]any{}
	}
	return result
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func truncateForLog(value string, limit int) string {
	trimmed := strings.TrimSpace(value)
	if limit <= 0 || len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "...(truncated)"
}
