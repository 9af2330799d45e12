package graph_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravikrr/agentgraph/graph"
)

func TestRetryPolicyValidate(t *testing.T) {
	require.NoError(t, (&graph.RetryPolicy{MaxAttempts: 1}).Validate())
	require.Error(t, (&graph.RetryPolicy{MaxAttempts: 0}).Validate())

	require.Error(t, (&graph.RetryPolicy{
		MaxAttempts: 2, BaseDelay: 100, MaxDelay: 50,
	}).Validate())
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	attempts := 0
	errTransient := errors.New("transient")

	err := graph.Retry(context.Background(), &graph.RetryPolicy{
		MaxAttempts: 3,
		Retryable:   func(error) bool { return true },
	}, rng, func() error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	errFatal := errors.New("fatal")
	attempts := 0

	err := graph.Retry(context.Background(), &graph.RetryPolicy{
		MaxAttempts: 5,
		Retryable:   func(error) bool { return false },
	}, nil, func() error {
		attempts++
		return errFatal
	})

	require.ErrorIs(t, err, errFatal)
	require.Equal(t, 1, attempts)
}

func TestRetryNilPolicyRunsOnce(t *testing.T) {
	attempts := 0
	err := graph.Retry(context.Background(), nil, nil, func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, attempts)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := graph.Retry(ctx, &graph.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   10,
		Retryable:   func(error) bool { return true },
	}, nil, func() error {
		attempts++
		return errors.New("fails")
	})

	require.Error(t, err)
	require.Equal(t, 1, attempts, "cancellation is checked before sleeping into the next attempt")
}
