package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lecternhq/lectern/internal/config"
	"github.com/lecternhq/lectern/internal/core"
)

type Anthropic struct {
	baseProvider
	maxTokens   int
	temperature float64
}

func NewAnthropic(cfg *config.AnthropicConfig) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", cfg.APIKey, cfg.Model),
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
	}
}

// contentBlock covers the text, tool_use and tool_result block variants of
// the Messages API. Unused fields stay empty and are omitted on the wire.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type wireMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

func (a *Anthropic) Generate(ctx context.Context, system string, messages []core.Message, tools []core.Tool) (core.Completion, error) {
	payload := map[string]any{
		"model":       a.model,
		"max_tokens":  a.maxTokens,
		"temperature": a.temperature,
		"messages":    toWireMessages(messages),
	}
	if system != "" {
		payload["system"] = system
	}
	if len(tools) > 0 {
		payload["tools"] = tools
		payload["tool_choice"] = map[string]string{"type": "auto"}
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, headers)
	if err != nil {
		return core.Completion{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Completion{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Completion{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Content    []contentBlock `json:"content"`
		StopReason string         `json:"stop_reason"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Completion{}, fmt.Errorf("decode: %w", err)
	}

	completion := core.Completion{StopReason: result.StopReason}
	for _, c := range result.Content {
		switch c.Type {
		case "text":
			completion.Text += c.Text
		case "tool_use":
			completion.ToolCalls = append(completion.ToolCalls, core.ToolCall{
				ID:    c.ID,
				Name:  c.Name,
				Input: c.Input,
			})
		}
	}
	return completion, nil
}

func toWireMessages(messages []core.Message) []wireMessage {
	wire := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		var blocks []contentBlock

		switch {
		case len(m.ToolResults) > 0:
			for _, tr := range m.ToolResults {
				blocks = append(blocks, contentBlock{
					Type:      "tool_result",
					ToolUseID: tr.ToolUseID,
					Content:   tr.Content,
				})
			}
		case len(m.ToolCalls) > 0:
			if m.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				input := tc.Input
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, contentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: input,
				})
			}
		default:
			blocks = append(blocks, contentBlock{Type: "text", Text: m.Content})
		}

		wire = append(wire, wireMessage{Role: m.Role, Content: blocks})
	}
	return wire
}
