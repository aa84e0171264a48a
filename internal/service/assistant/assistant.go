package assistant

import (
	"context"
	"fmt"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/service/agent"
	"github.com/lecternhq/lectern/pkg/log"
)

// Answerer resolves one query against the tool-augmented model.
type Answerer interface {
	Answer(ctx context.Context, query, history string, dispatch agent.Dispatcher) (string, []core.Source, error)
}

// Sessions is the conversation history surface the assistant needs.
type Sessions interface {
	Create() string
	History(ctx context.Context, sessionID string) (string, error)
	Record(ctx context.Context, sessionID, query, answer string) error
}

// Catalog is the course inventory slice used for analytics.
type Catalog interface {
	CourseCount(ctx context.Context) (int, error)
	ListCourseTitles(ctx context.Context) ([]string, error)
}

// Assistant is the top-level query service: it threads session history
// into the agent, dispatches tool calls, and records the finished
// exchange.
type Assistant struct {
	agent    Answerer
	sessions Sessions
	dispatch agent.Dispatcher
	catalog  Catalog
}

func New(answerer Answerer, sessions Sessions, dispatch agent.Dispatcher, catalog Catalog) *Assistant {
	return &Assistant{
		agent:    answerer,
		sessions: sessions,
		dispatch: dispatch,
		catalog:  catalog,
	}
}

// Query answers one user question. A blank sessionID starts a new
// session; the id actually used is always returned so the caller can
// continue the conversation.
func (a *Assistant) Query(ctx context.Context, query, sessionID string) (string, []core.Source, string, error) {
	logger := log.FromCtx(ctx)

	if sessionID == "" {
		sessionID = a.sessions.Create()
		logger.Debug().Str("session", sessionID).Msg("created session")
	}

	history, err := a.sessions.History(ctx, sessionID)
	if err != nil {
		return "", nil, "", fmt.Errorf("load history: %w", err)
	}

	answer, sources, err := a.agent.Answer(ctx, query, history, a.dispatch)
	if err != nil {
		return "", nil, "", fmt.Errorf("answer query: %w", err)
	}

	if err := a.sessions.Record(ctx, sessionID, query, answer); err != nil {
		// The answer is already produced; losing one history entry must
		// not fail the request.
		logger.Error().Err(err).Str("session", sessionID).Msg("failed to record exchange")
	}

	return answer, sources, sessionID, nil
}

// Analytics summarizes the loaded course inventory.
type Analytics struct {
	TotalCourses int
	CourseTitles []string
}

func (a *Assistant) Analytics(ctx context.Context) (Analytics, error) {
	count, err := a.catalog.CourseCount(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("course count: %w", err)
	}
	titles, err := a.catalog.ListCourseTitles(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("course titles: %w", err)
	}
	return Analytics{TotalCourses: count, CourseTitles: titles}, nil
}
