package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b := NewBreaker(2, 50*time.Millisecond)
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.True(t, b.Allow(), "should not trip before threshold")

	b.RecordFailure()
	assert.False(t, b.Allow(), "should trip at threshold")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, b.Allow(), "should close again after breakFor elapses")
}

func TestBreaker_SuccessResets(t *testing.T) {
	b := NewBreaker(2, time.Second)
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.True(t, b.Allow())
}

func TestWithBackoff_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithBackoff_GivesUpAfterMax(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), func() error {
		attempts++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, MaxBusPublishAttempts, attempts)
}

func TestWithBackoff_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithBackoff(ctx, func() error { return errors.New("fails") })
	assert.Error(t, err)
}
