package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lecternhq/lectern/internal/core"
)

// Manager hands out session ids and renders bounded conversation history
// for prompt construction. Persistence lives in the repository; the
// manager itself is stateless.
type Manager struct {
	repo       core.MessagesRepository
	maxHistory int
}

// NewManager keeps the last maxHistory exchanges (a user query and its
// answer count as one exchange) per session.
func NewManager(repo core.MessagesRepository, maxHistory int) *Manager {
	return &Manager{repo: repo, maxHistory: maxHistory}
}

func (m *Manager) Create() string {
	return uuid.NewString()
}

// History renders the session's recent exchanges as alternating
// "User:"/"Assistant:" lines. An unknown session id is an empty history,
// not an error.
func (m *Manager) History(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	messages, err := m.repo.GetMessages(ctx, sessionID, m.maxHistory*2)
	if err != nil {
		return "", fmt.Errorf("fetch history: %w", err)
	}
	if len(messages) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleUser:
			lines = append(lines, "User: "+msg.Content)
		case core.RoleAssistant:
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Record appends one completed exchange to the session.
func (m *Manager) Record(ctx context.Context, sessionID, query, answer string) error {
	if err := m.repo.AddMessage(ctx, sessionID, core.Message{Role: core.RoleUser, Content: query}); err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	if err := m.repo.AddMessage(ctx, sessionID, core.Message{Role: core.RoleAssistant, Content: answer}); err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}
