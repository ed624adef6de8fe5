// Package events publishes domain events (new leads, admin mutations) to NATS
// so other services can react without polling the database.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event names, appended to the configured subject prefix.
const (
	LeadCreated     = "lead.created"
	ResourceCreated = "resource.created"
	ResourceUpdated = "resource.updated"
	ResourceDeleted = "resource.deleted"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends events.
type Publisher interface {
	Publish(name string, payload any) error
}

// Envelope is the JSON body of every event.
type Envelope struct {
	Event      string    `json:"event"`
	Resource   string    `json:"resource,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NATSPublisher publishes envelopes on prefix + "." + event name.
type NATSPublisher struct {
	conn   Conn
	prefix string
	now    func() time.Time
}

func NewNATSPublisher(conn Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, now: time.Now}
}

func (p *NATSPublisher) subject(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *NATSPublisher) Publish(name string, payload any) error {
	env := Envelope{Event: name, OccurredAt: p.now().UTC(), Payload: payload}
	if r, ok := payload.(ResourceChange); ok {
		env.Resource = r.Resource
		env.Payload = r.Item
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", name, err)
	}
	if err := p.conn.Publish(p.subject(name), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	return nil
}

// ResourceChange tags an admin mutation with the resource it touched.
type ResourceChange struct {
	Resource string
	Item     any
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(string, any) error { return nil }

// Connect dials NATS when url is set, otherwise returns Noop. The returned
// close func is always safe to call.
func Connect(url, prefix string) (Publisher, func(), error) {
	if url == "" {
		return Noop{}, func() {}, nil
	}
	nc, err := nats.Connect(url, nats.Name("steelhall"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return NewNATSPublisher(nc, prefix), func() { _ = nc.Drain() }, nil
}
