package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/tools"
	"github.com/lecternhq/lectern/pkg/log"
)

const fallbackAnswer = "No response generated."

// Dispatcher executes tool calls requested by the model.
type Dispatcher interface {
	Definitions() []core.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

type state int

const (
	awaitingModel state = iota
	executingTools
	forcingFinal
	done
)

// Agent runs the bounded generation loop: up to maxRounds rounds of tool
// execution, then one final call without tools if the model is still
// asking for them. Every transition ends in a text answer; the model is
// never left waiting on a tool it cannot have.
type Agent struct {
	ai        core.AIProvider
	maxRounds int
}

func NewAgent(ai core.AIProvider, maxRounds int) *Agent {
	return &Agent{ai: ai, maxRounds: maxRounds}
}

// Answer resolves one query. History is the rendered prior conversation
// and is folded into the system prompt, never into the message list.
// Returned sources cover every tool execution for this query in call
// order. A tool backend fault short-circuits into a plain error answer.
func (a *Agent) Answer(ctx context.Context, query, history string, dispatch Dispatcher) (string, []core.Source, error) {
	logger := log.FromCtx(ctx)

	system := buildSystem(history)
	defs := dispatch.Definitions()
	messages := []core.Message{{Role: core.RoleUser, Content: query}}

	var sources []core.Source
	answer := fallbackAnswer
	rounds := 0

	for st := awaitingModel; st != done; {
		switch st {
		case awaitingModel:
			completion, err := a.ai.Generate(ctx, system, messages, defs)
			if err != nil {
				return "", nil, fmt.Errorf("generate: %w", err)
			}

			if completion.StopReason == core.StopReasonToolUse && len(completion.ToolCalls) > 0 {
				messages = append(messages, core.Message{
					Role:      core.RoleAssistant,
					Content:   completion.Text,
					ToolCalls: completion.ToolCalls,
				})
				st = executingTools
				continue
			}

			if completion.Text != "" {
				answer = completion.Text
			}
			st = done

		case executingTools:
			rounds++
			var results []core.ToolResult
			for _, call := range messages[len(messages)-1].ToolCalls {
				logger.Debug().Str("tool", call.Name).Int("round", rounds).Msg("dispatching tool call")

				result, err := dispatch.Execute(ctx, call.Name, call.Input)
				if err != nil {
					logger.Error().Err(err).Str("tool", call.Name).Msg("tool execution failed")
					return fmt.Sprintf("Error executing tool '%s': %v", call.Name, err), nil, nil
				}
				results = append(results, core.ToolResult{ToolUseID: call.ID, Content: result.Content})
				sources = append(sources, result.Sources...)
			}
			messages = append(messages, core.Message{Role: core.RoleUser, ToolResults: results})

			if rounds >= a.maxRounds {
				st = forcingFinal
			} else {
				st = awaitingModel
			}

		case forcingFinal:
			// Round budget spent: one last call without tools so the
			// model has no choice but to answer in text.
			completion, err := a.ai.Generate(ctx, system, messages, nil)
			if err != nil {
				return "", nil, fmt.Errorf("generate final: %w", err)
			}
			if completion.Text != "" {
				answer = completion.Text
			}
			st = done
		}
	}

	return answer, sources, nil
}
