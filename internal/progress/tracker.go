// Package progress implements the in-memory, single-writer progress
// tracker one lookup or enhancement operation publishes updates through
// (spec.md §4.5).
package progress

import (
	"sync"
	"time"
)

// Stage names the pipeline stage a State was emitted from.
type Stage string

const (
	StageResolve      Stage = "resolve"
	StageCacheCheck   Stage = "cache_check"
	StageProviderFetch Stage = "provider_fetch"
	StageCluster      Stage = "cluster"
	StageSynthesize   Stage = "synthesize"
	StageWordLevel    Stage = "word_level"
	StagePersist      Stage = "persist"
	StageEnhance      Stage = "enhance"
)

// State is one snapshot of pipeline progress.
type State struct {
	Stage      Stage          `json:"stage"`
	Progress   float64        `json:"progress"` // in [0,1]
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	IsComplete bool           `json:"is_complete"`
	Error      string         `json:"error,omitempty"`
	Timestamp  time.Time      `json:"ts"`
}

const subscriberQueueSize = 32

// Tracker is scoped to one operation. The pipeline goroutine is the sole
// writer; Subscribe, Unsubscribe and Publish share the one lock, guarding
// the subscriber set and the terminal flag, not State itself.
type Tracker struct {
	mu          sync.Mutex
	subscribers map[int]chan State
	nextID      int
	terminal    bool // sticky once update_complete or update_error fires
}

func New() *Tracker {
	return &Tracker{subscribers: make(map[int]chan State)}
}

// Subscribe registers a new subscriber and returns its queue plus an
// unsubscribe function that is safe to call more than once and from any
// goroutine, guaranteeing removal on every exit path (cancellation
// included).
func (t *Tracker) Subscribe() (<-chan State, func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	ch := make(chan State, subscriberQueueSize)
	t.subscribers[id] = ch
	t.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			t.mu.Lock()
			if sub, ok := t.subscribers[id]; ok {
				delete(t.subscribers, id)
				close(sub)
			}
			t.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

// Publish fans a State out to every subscriber. update_complete and
// update_error are sticky: once either has been published, all further
// publishes are silently ignored.
func (t *Tracker) Publish(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminal {
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	for _, sub := range t.subscribers {
		t.send(sub, s)
	}
	if s.IsComplete || s.Error != "" {
		t.terminal = true
	}
}

// send delivers s to sub, dropping the oldest queued event to make room
// rather than blocking a slow consumer when the queue is full.
func (t *Tracker) send(sub chan State, s State) {
	select {
	case sub <- s:
		return
	default:
	}
	select {
	case <-sub:
	default:
	}
	select {
	case sub <- s:
	default:
	}
}

// Complete publishes a sticky completion state.
func (t *Tracker) Complete(stage Stage, message string) {
	t.Publish(State{Stage: stage, Progress: 1, Message: message, IsComplete: true})
}

// Fail publishes a sticky error state.
func (t *Tracker) Fail(stage Stage, err error) {
	t.Publish(State{Stage: stage, Message: "failed", Error: err.Error()})
}
