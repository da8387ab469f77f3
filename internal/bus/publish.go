package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/ilodestar/aiops-naas/internal/eventmodels"
	"github.com/ilodestar/aiops-naas/internal/resilience"
	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// ErrDeadLettered indicates Publish could not deliver payload to subject
// and fell back to publishing it to the subject's dead-letter
// counterpart instead. A caller that must distinguish "delivered" from
// "dead-lettered" (spec §4.3: a publish failure on incidents.created
// must leave the correlation window in place, not clear it) checks
// errors.Is(err, ErrDeadLettered) rather than treating a non-nil error
// as the only failure signal.
var ErrDeadLettered = errors.New("bus: publish failed, dead-lettered")

// Publish marshals payload and publishes it to subject, retrying
// transient failures with bounded exponential backoff (spec §7:
// BusTransientError → retry up to 5 attempts, then dead-letter). On
// final exhaustion the payload is republished, unmodified, to the
// subject's dead-letter counterpart wrapped in a eventmodels.DeadLetter,
// and Publish still returns a non-nil error wrapping ErrDeadLettered —
// the message never reached subject, even though it was not lost.
func (c *Client) Publish(ctx context.Context, subject string, payload any) (err error) {
	ctx, span := tracking.StartSpan(ctx, "bus", "publish")
	defer func() { tracking.EndSpan(span, err) }()

	body, merr := json.Marshal(payload)
	if merr != nil {
		err = fmt.Errorf("bus: marshal payload for %s: %w", subject, merr)
		return err
	}

	if !c.breaker.Allow() {
		err = c.deadLetter(ctx, subject, body, "publish circuit open")
		return err
	}

	publishErr := resilience.WithBackoff(ctx, func() error {
		_, err := c.js.Publish(subject, body, nats.Context(ctx))
		return err
	})
	if publishErr != nil {
		c.breaker.RecordFailure()
		err = c.deadLetter(ctx, subject, body, publishErr.Error())
		return err
	}
	c.breaker.RecordSuccess()
	return nil
}

func (c *Client) deadLetter(ctx context.Context, originalSubject string, original json.RawMessage, reason string) error {
	dl := eventmodels.DeadLetter{Reason: reason, Original: original}
	body, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("bus: marshal dead letter for %s: %w", originalSubject, err)
	}
	subject := eventmodels.DeadLetterSubject(originalSubject)
	if _, err := c.js.Publish(subject, body); err != nil {
		return fmt.Errorf("bus: dead-letter publish to %s failed: %w", subject, err)
	}
	if c.logger != nil {
		c.logger.Warn("published to dead letter", "subject", subject, "reason", reason)
	}
	return fmt.Errorf("%w: %s", ErrDeadLettered, reason)
}
