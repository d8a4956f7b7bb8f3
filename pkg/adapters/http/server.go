// Package http exposes an interpreter over a small REST API with a
// server-sent event stream of interpretations.
package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/internal/logging"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// MaxUtteranceSize bounds the request body of POST /interpret.
const MaxUtteranceSize = 4 << 10

// Server serves the REST API. Interpretations are serialised: the rule
// engine is not safe for concurrent use.
type Server struct {
	Interpreter ports.Interpreter
	Journal     ports.Journal
	Streams     *StreamManager
	Metrics     http.Handler
	Logger      *slog.Logger

	mu sync.Mutex
}

// InterpretRequest is the body of POST /interpret.
type InterpretRequest struct {
	Text string `json:"text"`
}

// InterpretResponse is the answer of POST /interpret.
type InterpretResponse struct {
	domain.Record
	Error string `json:"error,omitempty"`
}

// NewHandler creates the HTTP handler of s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	r := chi.NewRouter()
	r.Post("/interpret", s.Interpret)
	r.Get("/rules", s.GetRules)
	r.Get("/history", s.GetHistory)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Interpret handles the POST /interpret request.
func (s *Server) Interpret(w http.ResponseWriter, r *http.Request) {
	var body InterpretRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUtteranceSize)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("Interpret: Invalid request body", "error", err)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		http.Error(w, "Missing text", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	ann, err := s.Interpreter.InterpretUtterance(r.Context(), body.Text)
	s.mu.Unlock()

	resp := InterpretResponse{Record: ann.Record()}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusInternalServerError
		s.Logger.Error("Interpret failed", "error", err, "input", ann.Input)
	}
	s.Streams.Broadcast(ann.Record())
	writeJSON(w, status, resp, s.Logger)
}

// GetRules handles the GET /rules request.
func (s *Server) GetRules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rules := s.Interpreter.Rules()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rules, s.Logger)
}

// GetHistory handles the GET /history?limit=N request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "No journal configured", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.Journal.List(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("History error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("History failed", "error", err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, records, s.Logger)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cuevox-http",
		"version": strings.TrimSpace(cuevox.Version),
	}, s.Logger)
}

// SubscribeEvents handles the GET /events request (SSE). Every interpretation
// served by this server is sent as one JSON record.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: interpretation\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
