// Package events fans session facts out to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Routing keys.
const (
	KeySessionReport  = "session.report"
	KeyEvidenceStored = "evidence.stored"
	KeyMasteryUpdated = "mastery.updated"
)

// Envelope wraps every published payload.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher publishes payloads under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

func encode(routingKey string, payload any, now time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Type: routingKey, OccurredAt: now.UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", routingKey, err)
	}
	return body, nil
}

// Nop discards everything. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error { return nil }

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu   sync.Mutex
	Sent []Envelope
	Err  error
}

func (r *Recorder) Publish(_ context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, Envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Payload: payload})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Keys returns the routing keys published so far, in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.Sent))
	for i, e := range r.Sent {
		keys[i] = e.Type
	}
	return keys
}
