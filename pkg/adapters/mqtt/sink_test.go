package mqtt_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JanMattner/cuevox/pkg/adapters/mqtt"
	"github.com/JanMattner/cuevox/pkg/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	done chan struct{}
	err  error
}

func completed(err error) *token {
	t := &token{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *token) Wait() bool                       { <-t.done; return true }
func (t *token) WaitTimeout(d time.Duration) bool { return t.Wait() }
func (t *token) Done() <-chan struct{}            { return t.done }
func (t *token) Error() error                     { return t.err }

type published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  interface{}
}

type fakeClient struct {
	mu       sync.Mutex
	messages []published
	next     func() paho.Token
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic, qos, retained, payload})
	if c.next != nil {
		return c.next()
	}
	return completed(nil)
}

func TestSink_Send(t *testing.T) {
	client := &fakeClient{}
	sink := mqtt.NewSink(client, mqtt.WithPrefix("/home/"), mqtt.WithQoS(1), mqtt.WithRetained(true))

	item := domain.NewItem(domain.ItemSpec{Name: "Kitchen_Light"}, sink)
	require.NoError(t, item.SendCommand(context.Background(), "ON"))
	require.NoError(t, sink.Send(context.Background(), domain.Command{Target: "Dimmer", Payload: 40}))

	assert.Equal(t, []published{
		{"home/Kitchen_Light/command", 1, true, "ON"},
		{"home/Dimmer/command", 1, true, "40"},
	}, client.messages)
}

func TestSink_Topic(t *testing.T) {
	assert.Equal(t, "cuevox/Lamp/command", mqtt.NewSink(nil).Topic("Lamp"))
	assert.Equal(t, "Lamp/command", mqtt.NewSink(nil, mqtt.WithPrefix("")).Topic("Lamp"))
}

func TestSink_Errors(t *testing.T) {
	broker := errors.New("not authorized")

	t.Run("broker error", func(t *testing.T) {
		client := &fakeClient{next: func() paho.Token { return completed(broker) }}
		err := mqtt.NewSink(client).Send(context.Background(), domain.Command{Target: "Lamp", Payload: "ON"})
		assert.ErrorIs(t, err, broker)
		assert.Contains(t, err.Error(), "cuevox/Lamp/command")
	})

	t.Run("timeout", func(t *testing.T) {
		client := &fakeClient{next: func() paho.Token { return &token{done: make(chan struct{})} }}
		err := mqtt.NewSink(client, mqtt.WithTimeout(10*time.Millisecond)).
			Send(context.Background(), domain.Command{Target: "Lamp", Payload: "ON"})
		assert.ErrorIs(t, err, mqtt.ErrTimeout)
	})

	t.Run("cancelled", func(t *testing.T) {
		client := &fakeClient{next: func() paho.Token { return &token{done: make(chan struct{})} }}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := mqtt.NewSink(client).Send(ctx, domain.Command{Target: "Lamp", Payload: "ON"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
