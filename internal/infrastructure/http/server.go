// Package http provides the JSON API surface consumed by the
// presentation shell. This is the outermost layer; it owns sessions and
// decides how pipeline errors are rendered.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hctpa/guidebot/internal/domain/entities"
	"github.com/hctpa/guidebot/internal/domain/usecases"
)

// Asker answers questions within a session. Implemented by
// usecases.AnswerPipeline.
type Asker interface {
	Ask(ctx context.Context, session *usecases.SessionContext, question string) (*entities.AskResult, error)
}

// IndexStats reports index build state for the health endpoint.
// Implemented by usecases.IndexManager.
type IndexStats interface {
	Stats() (state string, chunks int)
}

// Server is the HTTP server for the question-answering API.
type Server struct {
	asker    Asker
	stats    IndexStats
	sessions *sessionRegistry
	log      *zap.Logger
	addr     string
}

// NewServer creates a server.
func NewServer(asker Asker, stats IndexStats, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		asker:    asker,
		stats:    stats,
		sessions: newSessionRegistry(),
		log:      log,
		addr:     addr,
	}
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/session/reset", s.handleReset)
	mux.HandleFunc("/api/health", s.handleHealth)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(s.loggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	s.log.Info("server starting", zap.String("addr", s.addr))
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type sourceRef struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

type askResponse struct {
	SessionID string      `json:"session_id"`
	Answer    string      `json:"answer"`
	Sources   []sourceRef `json:"sources"`
}

type errorBody struct {
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	SessionID string    `json:"session_id,omitempty"`
	Error     errorBody `json:"error"`
}

// handleAsk answers one question. The per-session lock enforces the
// single-writer-per-session contract of the conversation state.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Message: "invalid request body"}})
		return
	}

	entry := s.sessions.get(req.SessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	result, err := s.asker.Ask(r.Context(), entry.session, req.Question)
	if err != nil {
		s.writeAskError(w, entry.session, err)
		return
	}

	sources := make([]sourceRef, len(result.Sources))
	for i, src := range result.Sources {
		sources[i] = sourceRef{ID: src.Chunk.ID, Source: src.Chunk.Source, Score: src.Score}
	}
	writeJSON(w, http.StatusOK, askResponse{
		SessionID: entry.session.ID,
		Answer:    result.Answer,
		Sources:   sources,
	})
}

// writeAskError renders a pipeline failure. Except for the empty
// question case (where no user turn exists), the failure is also
// recorded as an assistant turn so the transcript stays complete.
func (s *Server) writeAskError(w http.ResponseWriter, session *usecases.SessionContext, err error) {
	var stage string
	var pe *entities.PipelineError
	if errors.As(err, &pe) {
		stage = string(pe.Stage)
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, entities.ErrEmptyQuestion):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			SessionID: session.ID,
			Error:     errorBody{Message: err.Error()},
		})
		return
	case errors.Is(err, entities.ErrEmptyCorpus):
		status = http.StatusServiceUnavailable
	case errors.Is(err, entities.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, entities.ErrPromptTooLarge):
		status = http.StatusRequestEntityTooLarge
	}

	msg := "Error generating response: " + err.Error()
	session.Conversation.Append(entities.Turn{Role: entities.RoleAssistant, Content: msg})
	s.log.Warn("ask failed", zap.String("session", session.ID), zap.String("stage", stage), zap.Error(err))
	writeJSON(w, status, errorResponse{
		SessionID: session.ID,
		Error:     errorBody{Stage: stage, Message: msg},
	})
}

type historyResponse struct {
	SessionID string          `json:"session_id"`
	Turns     []entities.Turn `json:"turns"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	entry, ok := s.sessions.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{Message: "unknown session"}})
		return
	}
	entry.mu.Lock()
	turns := entry.session.Conversation.History()
	entry.mu.Unlock()
	writeJSON(w, http.StatusOK, historyResponse{SessionID: id, Turns: turns})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Message: "invalid request body"}})
		return
	}
	entry, ok := s.sessions.lookup(req.SessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{Message: "unknown session"}})
		return
	}
	entry.mu.Lock()
	entry.session.Conversation.Clear()
	entry.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": req.SessionID, "status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state, chunks := s.stats.Stats()
	writeJSON(w, http.StatusOK, map[string]any{"status": state, "chunks": chunks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sessionEntry pairs a session with the lock serializing its writers.
type sessionEntry struct {
	mu      sync.Mutex
	session *usecases.SessionContext
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*sessionEntry)}
}

// get returns the entry for id, creating a fresh session when id is
// empty or unknown.
func (r *sessionRegistry) get(id string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		if e, ok := r.sessions[id]; ok {
			return e
		}
	}
	session := usecases.NewSessionContext()
	if id != "" {
		session.ID = id
	}
	e := &sessionEntry{session: session}
	r.sessions[session.ID] = e
	return e
}

func (r *sessionRegistry) lookup(id string) (*sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
