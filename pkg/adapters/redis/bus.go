package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JanMattner/cuevox/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Bus is a CommandSink publishing every command as JSON on a Redis channel,
// for home automation bridges subscribed to it.
type Bus struct {
	client  *backend.Client
	channel string
}

// NewBus creates a bus publishing on channel.
func NewBus(client *backend.Client, channel string) *Bus {
	if channel == "" {
		channel = "cuevox:commands"
	}
	return &Bus{client: client, channel: channel}
}

// Send publishes cmd.
func (b *Bus) Send(ctx context.Context, cmd domain.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish command for %s: %w", cmd.Target, err)
	}
	return nil
}

// Subscribe delivers the commands published on the bus until ctx is done.
// The returned channel is closed afterwards.
func (b *Bus) Subscribe(ctx context.Context) (<-chan domain.Command, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan domain.Command)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var cmd domain.Command
				if err := json.Unmarshal([]byte(msg.Payload), &cmd); err != nil {
					continue
				}
				select {
				case out <- cmd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
