package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/larsks/datamodule/internal/activator"
	"github.com/larsks/datamodule/internal/behavior"
	"github.com/larsks/datamodule/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{topic: topic, payload: payload.([]byte)})
	return nil
}

func (f *fakePublisher) byTopic() map[string]ActivationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := map[string]ActivationEvent{}
	for _, m := range f.messages {
		var e ActivationEvent
		if err := json.Unmarshal(m.payload, &e); err == nil {
			events[m.topic] = e
		}
	}
	return events
}

func TestReporter_PublishesOutcomes(t *testing.T) {
	reg := behavior.NewRegistry()
	require.NoError(t, reg.Register("ok", behavior.FactoryFunc(
		func(ctx context.Context, el *document.Element) (behavior.Instance, error) {
			return "instance", nil
		})))

	doc, err := document.ParseString(`<section data-module="ok missing"></section>`)
	require.NoError(t, err)

	pub := &fakePublisher{}
	reporter := NewReporter(pub)
	reporter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	a := activator.New(reg, activator.WithFailureHandler(nil), activator.WithObserver(reporter.Observer()))
	_ = a.Run(context.Background(), doc)

	events := pub.byTopic()
	require.Len(t, events, 2)

	ok := events["event/activation/ok/activated"]
	assert.Equal(t, "ok", ok.Module)
	assert.Equal(t, "section", ok.Tag)
	assert.Equal(t, 0, ok.Index)
	assert.Empty(t, ok.Error)
	assert.Equal(t, "2024-01-02T03:04:05Z", ok.Timestamp)

	failed := events["event/activation/missing/failed"]
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, 1, failed.Index)
	assert.Contains(t, failed.Error, "unknown module")
}

func TestReporter_PublishErrorDoesNotFailActivation(t *testing.T) {
	reg := behavior.NewRegistry()
	require.NoError(t, reg.Register("ok", behavior.FactoryFunc(
		func(ctx context.Context, el *document.Element) (behavior.Instance, error) {
			return nil, nil
		})))

	doc, err := document.ParseString(`<div data-module="ok"></div>`)
	require.NoError(t, err)

	reporter := NewReporter(&fakePublisher{err: errors.New("broker down")})
	a := activator.New(reg, activator.WithObserver(reporter.Observer()))
	assert.NoError(t, a.Run(context.Background(), doc))
}

type lateConnector struct {
	fakePublisher
	connected chan struct{}
}

func (l *lateConnector) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	select {
	case <-l.connected:
		return l.fakePublisher.Publish(topic, qos, retained, payload)
	default:
		return errors.New("not connected")
	}
}

func (l *lateConnector) WaitConnected(ctx context.Context) error {
	select {
	case <-l.connected:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestReporter_WaitReady(t *testing.T) {
	t.Run("plain publisher", func(t *testing.T) {
		assert.NoError(t, NewReporter(&fakePublisher{}).WaitReady(context.Background()))
	})

	t.Run("connects late", func(t *testing.T) {
		pub := &lateConnector{connected: make(chan struct{})}
		r := NewReporter(pub)

		assert.Error(t, r.Publish(ActivationEvent{Module: "toc", Status: StatusActivated}))

		go func() {
			time.Sleep(20 * time.Millisecond)
			close(pub.connected)
		}()
		require.NoError(t, r.WaitReady(context.Background()))
		assert.NoError(t, r.Publish(ActivationEvent{Module: "toc", Status: StatusActivated}))
		assert.Len(t, pub.byTopic(), 1)
	})

	t.Run("never connects", func(t *testing.T) {
		r := NewReporter(&lateConnector{connected: make(chan struct{})})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, r.WaitReady(ctx), context.DeadlineExceeded)
	})
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, DefaultConnectTimeout, Config{}.Timeout())
	assert.Equal(t, time.Second, Config{ConnectTimeout: time.Second}.Timeout())
}

func TestActivationEvent_Topic(t *testing.T) {
	e := ActivationEvent{Module: "toc", Status: StatusActivated}
	assert.Equal(t, "event/activation/toc/activated", e.Topic())
}

func TestConfig(t *testing.T) {
	var c Config
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Validate())

	reporter, closeFn, err := Connect(c)
	require.NoError(t, err)
	assert.Nil(t, reporter)
	closeFn()

	c.ServerURL = "http://broker"
	assert.True(t, c.Enabled())
	assert.Error(t, c.Validate())

	_, _, err = Connect(c)
	assert.Error(t, err)
}
