package memory

import (
	"context"
	"sync"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Journal implements ports.Journal in memory.
// When a capacity is set, the oldest records are dropped.
type Journal struct {
	mu       sync.RWMutex
	records  []domain.Record
	capacity int
}

// NewJournal creates a journal keeping at most capacity records.
// A capacity <= 0 keeps everything.
func NewJournal(capacity int) *Journal {
	return &Journal{capacity: capacity}
}

// Record appends r.
func (j *Journal) Record(ctx context.Context, r domain.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, r)
	if j.capacity > 0 && len(j.records) > j.capacity {
		j.records = append([]domain.Record(nil), j.records[len(j.records)-j.capacity:]...)
	}
	return nil
}

// List returns up to limit records, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := len(j.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Record, 0, n)
	for i := len(j.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, j.records[i])
	}
	return out, nil
}
