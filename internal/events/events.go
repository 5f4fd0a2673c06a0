// Package events reports activation outcomes over MQTT.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/larsks/datamodule/internal/activator"
)

// Outcome statuses
const (
	StatusActivated = "activated"
	StatusFailed    = "failed"
)

// TopicPrefix is prepended to every activation topic.
const TopicPrefix = "event/activation"

// Publisher is the part of an MQTT client used to send events.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) error
}

// Connector is implemented by publishers that connect in the background.
type Connector interface {
	WaitConnected(ctx context.Context) error
}

// ActivationEvent describes the outcome of one (element, module) pair.
type ActivationEvent struct {
	Module    string `json:"module"`
	Tag       string `json:"tag"`
	Index     int    `json:"index"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Topic returns the topic an event is published on.
func (e ActivationEvent) Topic() string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, e.Module, e.Status)
}

// NewActivationEvent builds the event for a finished task.
func NewActivationEvent(t *activator.Task, now time.Time) ActivationEvent {
	event := ActivationEvent{
		Module:    t.Module,
		Index:     t.Index,
		Status:    StatusActivated,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if t.Element != nil {
		event.Tag = t.Element.Tag()
	}
	if err := t.Err(); err != nil {
		event.Status = StatusFailed
		event.Error = err.Error()
	}
	return event
}

// Reporter publishes one event per finished task.
type Reporter struct {
	publisher Publisher
	now       func() time.Time
}

// NewReporter creates a Reporter that sends events through publisher.
func NewReporter(publisher Publisher) *Reporter {
	return &Reporter{
		publisher: publisher,
		now:       time.Now,
	}
}

// Observer returns an activator observer that publishes task outcomes.
// Publishing failures are logged and never affect the activation.
func (r *Reporter) Observer() activator.Observer {
	return func(t *activator.Task) {
		if err := r.Publish(NewActivationEvent(t, r.now())); err != nil {
			log.Printf("failed to publish activation event for %s: %v", t.Module, err)
		}
	}
}

// WaitReady blocks until the publisher can send events or ctx ends.
// Publishers that are not Connectors are always ready.
func (r *Reporter) WaitReady(ctx context.Context) error {
	c, ok := r.publisher.(Connector)
	if !ok {
		return nil
	}
	return c.WaitConnected(ctx)
}

// Publish sends a single event.
func (r *Reporter) Publish(event ActivationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	return r.publisher.Publish(event.Topic(), 0, false, payload)
}
