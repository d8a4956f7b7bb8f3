package ports

import (
	"context"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Journal keeps the history of interpreted utterances.
type Journal interface {
	// Record appends r to the history.
	Record(ctx context.Context, r domain.Record) error

	// List returns up to limit records, newest first.
	// A limit <= 0 returns the whole history.
	List(ctx context.Context, limit int) ([]domain.Record, error)
}
