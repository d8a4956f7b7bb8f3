package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// Recorder is a CommandSink that keeps every command it receives.
// Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	commands []domain.Command
	errs     map[string]error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{errs: make(map[string]error)}
}

// FailFor makes every later command to target fail with err.
func (r *Recorder) FailFor(target string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[target] = err
}

// Send records cmd.
func (r *Recorder) Send(ctx context.Context, cmd domain.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[cmd.Target]; err != nil {
		return err
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []domain.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Command(nil), r.commands...)
}

// For returns the payloads recorded for target.
func (r *Recorder) For(target string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, c := range r.commands {
		if c.Target == target {
			out = append(out, c.Payload)
		}
	}
	return out
}

// Reset forgets recorded commands and failures.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
	r.errs = make(map[string]error)
}

// LogSink is a dry-run CommandSink that only logs.
type LogSink struct {
	Logger *slog.Logger
}

// Send logs cmd at info level.
func (s LogSink) Send(ctx context.Context, cmd domain.Command) error {
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "send command", "target", cmd.Target, "payload", cmd.Payload)
	}
	return nil
}
