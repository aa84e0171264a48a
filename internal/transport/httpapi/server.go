package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lecternhq/lectern/internal/core"
	"github.com/lecternhq/lectern/internal/service/assistant"
	"github.com/lecternhq/lectern/pkg/conv"
	"github.com/lecternhq/lectern/pkg/log"
)

// Assistant is the query surface the HTTP layer exposes.
type Assistant interface {
	Query(ctx context.Context, query, sessionID string) (string, []core.Source, string, error)
	Analytics(ctx context.Context) (assistant.Analytics, error)
}

// Server exposes the assistant over HTTP. It implements srv.Service so
// the process wiring can start and drain it like any other component.
type Server struct {
	assistant Assistant
	httpSrv   *http.Server
}

func NewServer(addr string, svc Assistant) *Server {
	s := &Server{assistant: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/courses", s.handleCourses)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.httpSrv.Addr).Msg("http api listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type queryResponse struct {
	Answer     string        `json:"answer"`
	AnswerHTML string        `json:"answer_html"`
	Sources    []core.Source `json:"sources"`
	SessionID  string        `json:"session_id"`
}

type coursesResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "query is required"})
		return
	}

	answer, sources, sessionID, err := s.assistant.Query(r.Context(), req.Query, req.SessionID)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process query"})
		return
	}

	if sources == nil {
		sources = []core.Source{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:     answer,
		AnswerHTML: conv.MarkdownToSafeHTML([]byte(answer)),
		Sources:    sources,
		SessionID:  sessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	stats, err := s.assistant.Analytics(r.Context())
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("analytics failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load course analytics"})
		return
	}

	if stats.CourseTitles == nil {
		stats.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, coursesResponse{
		TotalCourses: stats.TotalCourses,
		CourseTitles: stats.CourseTitles,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
