package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerPublishDeliversToSubscribers(t *testing.T) {
	tr := New()
	ch, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	tr.Publish(State{Stage: StageResolve, Progress: 0.1, Message: "resolving"})

	select {
	case s := <-ch:
		assert.Equal(t, StageResolve, s.Stage)
		assert.Equal(t, "resolving", s.Message)
		assert.False(t, s.Timestamp.IsZero(), "expected Publish to stamp a timestamp")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published state")
	}
}

func TestTrackerCompleteIsSticky(t *testing.T) {
	tr := New()
	ch, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	tr.Complete(StagePersist, "done")
	tr.Publish(State{Stage: StageEnhance, Message: "should be dropped"})

	first := <-ch
	assert.True(t, first.IsComplete, "expected first state to be complete")

	select {
	case s := <-ch:
		t.Fatalf("expected no further states after completion, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrackerFailIsSticky(t *testing.T) {
	tr := New()
	ch, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	tr.Fail(StageProviderFetch, errors.New("provider unavailable"))
	tr.Publish(State{Stage: StageEnhance, Message: "should be dropped"})

	first := <-ch
	require.Equal(t, "provider unavailable", first.Error)

	select {
	case s := <-ch:
		t.Fatalf("expected no further states after failure, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeIsIdempotentAndStopsDelivery(t *testing.T) {
	tr := New()
	ch, unsubscribe := tr.Subscribe()

	unsubscribe()
	unsubscribe() // must not panic or double-close

	tr.Publish(State{Stage: StageResolve, Message: "after unsubscribe"})

	_, ok := <-ch
	assert.False(t, ok, "expected channel to be closed after unsubscribe")
}

func TestSendDropsOldestWhenSubscriberIsSlow(t *testing.T) {
	tr := New()
	ch, unsubscribe := tr.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberQueueSize+5; i++ {
		tr.Publish(State{Stage: StageCluster, Progress: float64(i)})
	}

	var last State
	for {
		select {
		case s := <-ch:
			last = s
		default:
			goto drained
		}
	}
drained:
	assert.Equal(t, float64(subscriberQueueSize+4), last.Progress, "expected newest state to survive overflow")
}
