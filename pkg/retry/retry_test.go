package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 1.5,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetrierSucceedsFirstTry(t *testing.T) {
	r := NewRetrier(fastConfig())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetrierRetriesUntilSuccess(t *testing.T) {
	r := NewRetrier(fastConfig())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := NewRetrier(fastConfig())

	calls := 0
	wantErr := errors.New("permanent")
	err := r.Do(context.Background(), func() error {
		calls++
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
}

func TestRetrierHonorsContextCancellation(t *testing.T) {
	r := NewRetrier(&Config{
		MaxRetries:    10,
		BackoffFactor: 2,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, func() error {
		return errors.New("always fails")
	})

	require.ErrorIs(t, err, context.Canceled)
}
