// Package mqtt publishes item commands to an MQTT broker.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JanMattner/cuevox/pkg/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// ErrTimeout is returned when the broker did not confirm a publish in time.
var ErrTimeout = errors.New("mqtt: publish timed out")

// Publisher is the subset of paho.Client used by the Sink.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Sink implements domain.CommandSink. Commands are published as plain text
// on "<prefix>/<item>/command".
type Sink struct {
	client   Publisher
	prefix   string
	qos      byte
	retained bool
	timeout  time.Duration
}

// Option configures the Sink.
type Option func(*Sink)

// WithPrefix sets the topic prefix (default "cuevox").
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithQoS sets the quality of service of published commands.
func WithQoS(qos byte) Option {
	return func(s *Sink) {
		s.qos = qos
	}
}

// WithRetained publishes commands as retained messages.
func WithRetained(retained bool) Option {
	return func(s *Sink) {
		s.retained = retained
	}
}

// WithTimeout bounds the wait for the broker acknowledgement.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) {
		s.timeout = d
	}
}

// NewSink creates a sink publishing through client.
func NewSink(client Publisher, opts ...Option) *Sink {
	s := &Sink{client: client, prefix: "cuevox", timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topic returns the command topic of item.
func (s *Sink) Topic(item string) string {
	if s.prefix == "" {
		return item + "/command"
	}
	return s.prefix + "/" + item + "/command"
}

// Send publishes cmd and waits for the broker, ctx or the timeout.
func (s *Sink) Send(ctx context.Context, cmd domain.Command) error {
	topic := s.Topic(cmd.Target)
	token := s.client.Publish(topic, s.qos, s.retained, fmt.Sprint(cmd.Payload))

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%s: %w", topic, ErrTimeout)
	}
}

// Connect creates a paho client for broker and connects it.
func Connect(ctx context.Context, broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", broker, err)
		}
		return client, nil
	case <-ctx.Done():
		client.Disconnect(0)
		return nil, ctx.Err()
	}
}
