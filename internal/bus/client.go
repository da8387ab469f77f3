// Package bus wraps NATS JetStream for the pipeline's event traffic.
// Grounded on the pull-subscribe / durable-consumer / Ack-Nak-Term
// pattern in other_examples' audit-service and trm-service consumers,
// generalized from a single wildcard consumer reading one stream into a
// per-subject publish/subscribe API shared by all five services.
package bus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ilodestar/aiops-naas/internal/resilience"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// StreamName is the JetStream stream every pipeline subject lives on.
const StreamName = "AIOPS_EVENTS"

// Client wraps a JetStream-enabled NATS connection.
type Client struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	logger  tracking.Logger
	breaker *resilience.Breaker
}

// Connect dials url and ensures StreamName exists, covering every
// subject this pipeline publishes (spec §3's envelope subjects plus the
// dead-letter subject).
func Connect(url string, logger tracking.Logger) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("bus: connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus: jetstream context: %w", err)
	}

	c := &Client{conn: conn, js: js, logger: logger, breaker: resilience.NewBreaker(3, 30*time.Second)}
	if err := c.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureStream() error {
	_, err := c.js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"logs.>", "metrics.>", "anomaly.>", "incidents.>", "deadletter.>"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("bus: add stream: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (c *Client) Close() {
	_ = c.conn.Drain()
}

// Healthy reports whether the underlying connection is up, used by
// startup probes (spec §6 operator surface).
func (c *Client) Healthy() bool {
	return c.conn.IsConnected()
}
