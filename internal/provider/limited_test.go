package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexigraph.dev/dictionary/internal/model"
)

type fakeClient struct {
	tag   string
	calls int
}

func (f *fakeClient) Tag() string      { return f.tag }
func (f *fakeClient) Available() bool  { return true }
func (f *fakeClient) Fetch(ctx context.Context, word string) (*Fetched, error) {
	f.calls++
	return &Fetched{ProviderData: model.ProviderData{Provider: f.tag}}, nil
}

func TestWithRateLimitDelegatesToWrappedClient(t *testing.T) {
	inner := &fakeClient{tag: "fake"}
	client := WithRateLimit(inner, 1000, 10)

	assert.Equal(t, "fake", client.Tag(), "expected wrapped Tag() to pass through")

	fetched, err := client.Fetch(context.Background(), "word")
	require.NoError(t, err)
	assert.Equal(t, "fake", fetched.ProviderData.Provider)
	assert.Equal(t, 1, inner.calls, "expected the inner client to be called once")
}

func TestWithRateLimitRespectsContextCancellation(t *testing.T) {
	inner := &fakeClient{tag: "fake"}
	// burst of 1 with a very slow refill: the first Fetch consumes the
	// initial token and succeeds, the second must block on Wait until ctx
	// is cancelled.
	client := WithRateLimit(inner, 0.001, 1)

	_, err := client.Fetch(context.Background(), "word")
	require.NoError(t, err, "expected first Fetch to consume the initial burst token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Fetch(ctx, "word")
	require.Error(t, err, "expected an error once the context deadline is exceeded")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, inner.calls, "expected the inner client not to be called again while rate-limited")
}
