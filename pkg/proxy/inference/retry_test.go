package inference_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/art-proxy/pkg/proxy/inference"
)

type mockClient struct {
	call func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome
}

func (m *mockClient) Call(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
	return m.call(ctx, endpoint, payload)
}

// scriptedClient returns the scripted outcomes for each endpoint in order,
// repeating the last one, and records every attempt.
type scriptedClient struct {
	mu       sync.Mutex
	scripts  map[string][]inference.Outcome
	attempts map[string]int
}

func newScriptedClient(scripts map[string][]inference.Outcome) *scriptedClient {
	return &scriptedClient{
		scripts:  scripts,
		attempts: make(map[string]int),
	}
}

func (s *scriptedClient) Call(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	script := s.scripts[endpoint.Name]
	n := s.attempts[endpoint.Name]
	s.attempts[endpoint.Name] = n + 1

	if n >= len(script) {
		return script[len(script)-1]
	}
	return script[n]
}

func (s *scriptedClient) Attempts(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[name]
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

var testEndpoint = inference.Endpoint{Name: "primary-model", URL: "http://primary.invalid", Provider: inference.ProviderHuggingFace, Token: "token"}

var testPayload = inference.Payload{Inputs: "a cat, pixel art style", Parameters: inference.Parameters{Width: 512, Height: 512}}

func testPolicy(sleeper *recordingSleeper) inference.RetryPolicy {
	policy := inference.DefaultRetryPolicy()
	policy.Sleep = sleeper.Sleep
	return policy
}

func TestRetryPolicy_Delay(t *testing.T) {
	policy := inference.DefaultRetryPolicy()

	assert.Equal(t, 4*time.Second, policy.Delay(1))
	assert.Equal(t, 8*time.Second, policy.Delay(2))
	assert.Equal(t, 10*time.Second, policy.Delay(3))
	assert.Equal(t, 10*time.Second, policy.Delay(30))
	assert.Equal(t, 4*time.Second, policy.Delay(0))

	previous := time.Duration(0)
	for attempt := 1; attempt <= 10; attempt++ {
		delay := policy.Delay(attempt)
		assert.GreaterOrEqual(t, delay, previous)
		assert.LessOrEqual(t, delay, inference.DefaultMaxDelay)
		previous = delay
	}
}

func TestRetrier_SucceedsOnThirdAttempt(t *testing.T) {
	client := newScriptedClient(map[string][]inference.Outcome{
		testEndpoint.Name: {
			inference.Transient(http.StatusServiceUnavailable, "loading"),
			inference.Transient(http.StatusServiceUnavailable, "loading"),
			inference.Success([]byte("PNGDATA")),
			inference.Success([]byte("UNEXPECTED")),
		},
	})
	sleeper := &recordingSleeper{}

	outcome := inference.NewRetrier(client, testPolicy(sleeper)).CallWithRetry(context.Background(), testEndpoint, testPayload)

	require.True(t, outcome.IsSuccess())
	assert.Equal(t, []byte("PNGDATA"), outcome.Image)
	assert.Equal(t, 3, client.Attempts(testEndpoint.Name))
	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second}, sleeper.delays)
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	client := newScriptedClient(map[string][]inference.Outcome{
		testEndpoint.Name: {
			inference.Transient(http.StatusInternalServerError, "first"),
			inference.Transient(http.StatusBadGateway, "second"),
			inference.Transient(http.StatusGatewayTimeout, "third"),
		},
	})
	sleeper := &recordingSleeper{}

	outcome := inference.NewRetrier(client, testPolicy(sleeper)).CallWithRetry(context.Background(), testEndpoint, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, http.StatusGatewayTimeout, outcome.Status)
	assert.Equal(t, "third", outcome.Message)
	assert.Equal(t, 3, client.Attempts(testEndpoint.Name))
	assert.Len(t, sleeper.delays, 2)
}

func TestRetrier_FatalIsNotRetried(t *testing.T) {
	client := newScriptedClient(map[string][]inference.Outcome{
		testEndpoint.Name: {inference.Fatal("malformed payload")},
	})
	sleeper := &recordingSleeper{}

	outcome := inference.NewRetrier(client, testPolicy(sleeper)).CallWithRetry(context.Background(), testEndpoint, testPayload)

	assert.True(t, outcome.IsFatal())
	assert.Equal(t, 1, client.Attempts(testEndpoint.Name))
	assert.Empty(t, sleeper.delays)
}

func TestRetrier_CustomPolicy(t *testing.T) {
	attempts := 0
	client := &mockClient{
		call: func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
			attempts++
			return inference.Transient(http.StatusTooManyRequests, "rate limited")
		},
	}
	sleeper := &recordingSleeper{}

	retrier := inference.NewRetrier(client, inference.RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    3 * time.Millisecond,
		Sleep:       sleeper.Sleep,
	})
	outcome := retrier.CallWithRetry(context.Background(), testEndpoint, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, 5, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}, sleeper.delays)
}

func TestRetrier_IsRetryablePredicate(t *testing.T) {
	attempts := 0
	client := &mockClient{
		call: func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
			attempts++
			return inference.Transient(http.StatusUnauthorized, "invalid token")
		},
	}

	retrier := inference.NewRetrier(client, inference.RetryPolicy{
		IsRetryable: func(o inference.Outcome) bool {
			return o.IsTransient() && o.Status != http.StatusUnauthorized
		},
		Sleep: (&recordingSleeper{}).Sleep,
	})
	outcome := retrier.CallWithRetry(context.Background(), testEndpoint, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, 1, attempts)
}

func TestRetrier_DefaultsApplied(t *testing.T) {
	policy := inference.NewRetrier(&mockClient{}, inference.RetryPolicy{}).Policy()

	assert.Equal(t, inference.DefaultMaxAttempts, policy.MaxAttempts)
	assert.Equal(t, inference.DefaultBaseDelay, policy.BaseDelay)
	assert.Equal(t, inference.DefaultMaxDelay, policy.MaxDelay)
	assert.NotNil(t, policy.IsRetryable)
	assert.NotNil(t, policy.Sleep)
}

func TestRetrier_StopsWhenContextDone(t *testing.T) {
	attempts := 0
	client := &mockClient{
		call: func(ctx context.Context, endpoint inference.Endpoint, payload inference.Payload) inference.Outcome {
			attempts++
			return inference.Transient(http.StatusServiceUnavailable, "loading")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := inference.DefaultRetryPolicy()
	start := time.Now()
	outcome := inference.NewRetrier(client, policy).CallWithRetry(ctx, testEndpoint, testPayload)

	assert.True(t, outcome.IsTransient())
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Second)
}
