package bus

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// Handler processes one message's raw bytes. Returning a
// *eventmodels.PipelineError with Kind eventmodels.KindSchema or
// KindInvariantViolation terminates the message (no redelivery, routed
// to dead-letter by the caller); any other non-nil error Naks it for
// redelivery with JetStream's own backoff; nil error Acks it.
type Handler func(ctx context.Context, data []byte) error

// durableName derives a stable JetStream consumer name shared by every
// replica of a given service, so replicas form a competing-consumer
// group instead of each receiving their own copy (ported from the
// single shared `globalDurable` constant in the audit-service consumer,
// generalized to one name per (subject, serviceName) pair).
func durableName(serviceName, subject string) string {
	return serviceName + "-" + subject
}

// Subscribe creates (or reuses) a durable pull consumer on subject and
// runs handler against fetched batches until ctx is canceled. batchSize
// bounds how many messages are pulled per Fetch call.
func (c *Client) Subscribe(ctx context.Context, serviceName, subject string, batchSize int, handler Handler) error {
	if batchSize <= 0 {
		batchSize = 20
	}
	durable := durableName(serviceName, subject)

	sub, err := c.js.PullSubscribe(subject, durable, nats.BindStream(StreamName))
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msgs, err := sub.Fetch(batchSize, nats.Context(ctx))
				if err != nil {
					continue // timeout on an empty queue is expected, not an error
				}
				for _, msg := range msgs {
					c.dispatch(ctx, msg, subject, handler)
				}
			}
		}
	}()
	return nil
}

func (c *Client) dispatch(ctx context.Context, msg *nats.Msg, subject string, handler Handler) {
	ctx, span := tracking.StartSpan(ctx, "bus", "receive")
	err := handler(ctx, msg.Data)
	tracking.EndSpan(span, err)
	if err == nil {
		_ = msg.Ack()
		return
	}

	var pe *eventmodels.PipelineError
	if errors.As(err, &pe) && (pe.Kind == eventmodels.KindSchema || pe.Kind == eventmodels.KindInvariantViolation) {
		if c.logger != nil {
			c.logger.Warn("terminating unprocessable message", "subject", subject, "tracking_id", pe.TrackingID, "reason", pe.Reason)
		}
		_ = c.deadLetter(ctx, subject, msg.Data, pe.Error())
		_ = msg.Term()
		return
	}

	if c.logger != nil {
		c.logger.Error("nak message for redelivery", "subject", subject, "error", err)
	}
	_ = msg.Nak()
}
