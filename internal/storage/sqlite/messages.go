package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (h *MessagesRepo) AddMessage(ctx context.Context, sessionID string, msg core.Message) error {
	toolCalls, err := marshalOrEmpty(msg.ToolCalls)
	if err != nil {
		return fmt.Errorf("failed to marshal tool calls: %w", err)
	}
	toolResults, err := marshalOrEmpty(msg.ToolResults)
	if err != nil {
		return fmt.Errorf("failed to marshal tool results: %w", err)
	}

	query := `INSERT INTO messages (session_id, role, content, tool_calls, tool_results) VALUES (?, ?, ?, ?, ?)`
	_, err = h.db.ExecContext(ctx, query, sessionID, msg.Role, msg.Content, toolCalls, toolResults)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (h *MessagesRepo) GetMessages(ctx context.Context, sessionID string, limit int) ([]core.Message, error) {
	// Fetch the LAST 'limit' messages by ordering DESC
	query := `SELECT role, content, tool_calls, tool_results FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var content, toolCalls, toolResults sql.NullString

		if err := rows.Scan(&msg.Role, &content, &toolCalls, &toolResults); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Content = content.String

		if isSetJSON(toolCalls) {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool calls: %w", err)
			}
		}
		if isSetJSON(toolResults) {
			if err := json.Unmarshal([]byte(toolResults.String), &msg.ToolResults); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool results: %w", err)
			}
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrived newest-first; flip back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

// marshalOrEmpty stores empty slices as "" to save space.
func marshalOrEmpty(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s := string(data)
	if s == "null" {
		return "", nil
	}
	return s, nil
}

func isSetJSON(s sql.NullString) bool {
	return s.Valid && s.String != "" && s.String != "null"
}
