package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/service/agent"
	"github.com/lecternhq/lectern/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	answer      string
	sources     []core.Source
	err         error
	lastQuery   string
	lastHistory string
}

func (f *fakeAnswerer) Answer(ctx context.Context, query, history string, dispatch agent.Dispatcher) (string, []core.Source, error) {
	f.lastQuery = query
	f.lastHistory = history
	return f.answer, f.sources, f.err
}

type fakeSessions struct {
	created   int
	history   map[string]string
	recorded  map[string][2]string
	recordErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		history:  make(map[string]string),
		recorded: make(map[string][2]string),
	}
}

func (f *fakeSessions) Create() string {
	f.created++
	return "session-new"
}

func (f *fakeSessions) History(ctx context.Context, sessionID string) (string, error) {
	return f.history[sessionID], nil
}

func (f *fakeSessions) Record(ctx context.Context, sessionID, query, answer string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded[sessionID] = [2]string{query, answer}
	return nil
}

type noopDispatcher struct{}

func (noopDispatcher) Definitions() []core.Tool { return nil }
func (noopDispatcher) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Result{}, nil
}

type fakeCatalog struct {
	count  int
	titles []string
	err    error
}

func (f *fakeCatalog) CourseCount(ctx context.Context) (int, error) {
	return f.count, f.err
}

func (f *fakeCatalog) ListCourseTitles(ctx context.Context) ([]string, error) {
	return f.titles, f.err
}

func TestQueryCreatesSessionWhenAbsent(t *testing.T) {
	answerer := &fakeAnswerer{answer: "hello"}
	sessions := newFakeSessions()
	svc := New(answerer, sessions, noopDispatcher{}, &fakeCatalog{})

	answer, _, sessionID, err := svc.Query(context.Background(), "hi", "")
	require.NoError(t, err)

	assert.Equal(t, "hello", answer)
	assert.Equal(t, "session-new", sessionID)
	assert.Equal(t, 1, sessions.created)
}

func TestQueryReusesProvidedSession(t *testing.T) {
	answerer := &fakeAnswerer{answer: "follow-up answer"}
	sessions := newFakeSessions()
	sessions.history["s42"] = "User: earlier\nAssistant: reply"
	svc := New(answerer, sessions, noopDispatcher{}, &fakeCatalog{})

	_, _, sessionID, err := svc.Query(context.Background(), "and then?", "s42")
	require.NoError(t, err)

	assert.Equal(t, "s42", sessionID)
	assert.Zero(t, sessions.created)
	assert.Equal(t, "User: earlier\nAssistant: reply", answerer.lastHistory)
}

func TestQueryRecordsExchange(t *testing.T) {
	answerer := &fakeAnswerer{answer: "the answer"}
	sessions := newFakeSessions()
	svc := New(answerer, sessions, noopDispatcher{}, &fakeCatalog{})

	_, _, sessionID, err := svc.Query(context.Background(), "the question", "")
	require.NoError(t, err)

	assert.Equal(t, [2]string{"the question", "the answer"}, sessions.recorded[sessionID])
}

func TestQueryRecordFailureDoesNotFailRequest(t *testing.T) {
	answerer := &fakeAnswerer{answer: "still answered"}
	sessions := newFakeSessions()
	sessions.recordErr = errors.New("disk full")
	svc := New(answerer, sessions, noopDispatcher{}, &fakeCatalog{})

	answer, _, _, err := svc.Query(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Equal(t, "still answered", answer)
}

func TestQueryPassesSourcesThrough(t *testing.T) {
	answerer := &fakeAnswerer{
		answer:  "answer",
		sources: []core.Source{{Label: "Course - Lesson 1", Link: "https://example.com/l1"}},
	}
	svc := New(answerer, newFakeSessions(), noopDispatcher{}, &fakeCatalog{})

	_, sources, _, err := svc.Query(context.Background(), "q", "")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Course - Lesson 1", sources[0].Label)
}

func TestQueryAgentError(t *testing.T) {
	answerer := &fakeAnswerer{err: errors.New("api unavailable")}
	svc := New(answerer, newFakeSessions(), noopDispatcher{}, &fakeCatalog{})

	_, _, _, err := svc.Query(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api unavailable")
}

func TestAnalytics(t *testing.T) {
	catalog := &fakeCatalog{count: 2, titles: []string{"Course A", "Course B"}}
	svc := New(&fakeAnswerer{}, newFakeSessions(), noopDispatcher{}, catalog)

	stats, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"Course A", "Course B"}, stats.CourseTitles)
}
