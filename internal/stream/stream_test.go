package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/progress"
)

func TestMarshalPayloadHandlesStringsBytesAndStructs(t *testing.T) {
	assert.Equal(t, "already-a-string", marshalPayload("already-a-string"))
	assert.Equal(t, "raw-bytes", marshalPayload([]byte("raw-bytes")))
	assert.Contains(t, marshalPayload(gin.H{"a": 1}), `"a":1`)
}

func TestSSEWriteFramesEventAndData(t *testing.T) {
	w := httptest.NewRecorder()
	sseWrite(w, "progress", gin.H{"stage": "resolve"})

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: progress\n"), "expected event line first, got %q", body)
	assert.Contains(t, body, "data: ")
	assert.True(t, strings.HasSuffix(body, "\n\n"), "expected a trailing blank line to terminate the SSE frame, got %q", body)
}

func TestSSECommentIsNotAnEventFrame(t *testing.T) {
	w := httptest.NewRecorder()
	sseComment(w, "keepalive")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, ": keepalive"), "expected a raw comment line, got %q", body)
	assert.NotContains(t, body, "event:", "a comment must not carry an event name")
}

func TestSetSSEHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	setSSEHeaders(w)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}

func TestSendExampleBatchesChunksByBatchSize(t *testing.T) {
	w := httptest.NewRecorder()
	examples := make([]model.Example, exampleBatchSize+1)
	SendExampleBatches(w, w, 42, examples)

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event: completion_chunk"),
		"expected 2 chunks for %d examples at batch size %d", len(examples), exampleBatchSize)
}

func TestAdapterServeStreamsProgressThenCompletion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/lookup/stream", nil)

	adapter := NewAdapter(50*time.Millisecond, time.Second)

	run := func(ctx context.Context, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
		tracker.Publish(progress.State{Stage: progress.StageResolve, Message: "resolving"})
		// Give the adapter's select loop a window to drain the progress
		// frame before the completion frame becomes ready too.
		time.Sleep(20 * time.Millisecond)
		return &model.SynthesizedEntry{ID: 7, WordID: 9, DefinitionIDs: []int64{101}}, nil
	}

	resolve := func(ctx context.Context, definitionID int64) (*model.Definition, []model.Example, error) {
		return &model.Definition{ID: definitionID}, []model.Example{{ID: 1}}, nil
	}

	adapter.Serve(c, run, resolve)

	body := w.Body.String()
	assert.Contains(t, body, "event: config", "expected an opening config frame")
	assert.Contains(t, body, "event: progress")
	assert.Contains(t, body, "event: completion_start")
	assert.Contains(t, body, `"type":"definition"`, "expected the definition chunk to carry its body")
	assert.Contains(t, body, `"type":"examples"`, "expected an examples chunk")
	assert.Contains(t, body, "event: complete", "expected a terminal complete frame")
}

func TestAdapterServeFallsBackToBareDefinitionIDWithoutResolver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/lookup/stream", nil)

	adapter := NewAdapter(50*time.Millisecond, time.Second)

	run := func(ctx context.Context, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
		return &model.SynthesizedEntry{ID: 7, WordID: 9, DefinitionIDs: []int64{101}}, nil
	}

	adapter.Serve(c, run, nil)

	body := w.Body.String()
	assert.Contains(t, body, `"definition_id":101`)
	assert.NotContains(t, body, `"type":"examples"`, "no resolver means no example chunks")
}

func TestAdapterServeStreamsErrorOnRunFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/lookup/stream", nil)

	adapter := NewAdapter(50*time.Millisecond, time.Second)

	run := func(ctx context.Context, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
		return nil, errors.New("pipeline blew up")
	}

	adapter.Serve(c, run, nil)

	body := w.Body.String()
	assert.Contains(t, body, "event: error", "expected an error frame")
	assert.NotContains(t, body, "event: complete", "did not expect a complete frame after a run failure")
}
