package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JanMattner/cuevox/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.Journal using a Redis list, newest record first.
type Journal struct {
	client *backend.Client
	key    string
	size   int
	ttl    time.Duration
}

// Option configures the Journal.
type Option func(*Journal)

// WithTTL sets the expiration of the whole history, refreshed on every record.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithKey sets the key of the history list.
func WithKey(key string) Option {
	return func(j *Journal) {
		j.key = key
	}
}

// WithSize caps the history. A size <= 0 keeps everything.
func WithSize(size int) Option {
	return func(j *Journal) {
		j.size = size
	}
}

// NewClient connects to Redis.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewJournal creates a journal from an existing client.
func NewJournal(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		key:    "cuevox:journal",
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record pushes r to the head of the list.
func (j *Journal) Record(ctx context.Context, r domain.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := j.client.Pipeline()
	pipe.LPush(ctx, j.key, data)
	if j.size > 0 {
		pipe.LTrim(ctx, j.key, 0, int64(j.size-1))
	}
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key, j.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	values, err := j.client.LRange(ctx, j.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	records := make([]domain.Record, 0, len(values))
	for _, v := range values {
		var r domain.Record
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
