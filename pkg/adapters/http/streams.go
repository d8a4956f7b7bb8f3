package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// StreamManager fans interpretation records out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber. The returned function unregisters it
// and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Len returns the number of subscribers.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends rec to every subscriber. Slow subscribers lose messages.
func (sm *StreamManager) Broadcast(rec domain.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		sm.logger.Error("SSE: failed to marshal record", "error", err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers {
		select {
		case ch <- string(data):
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "id", rec.ID)
		}
	}
}
