// Package stream wraps a long-lived client connection around one lookup
// pipeline run (spec.md §4.6): a config frame, progress frames relayed
// from the progress tracker, heartbeats, an overall timeout, and
// chunked completion payloads.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/progress"
)

const exampleBatchSize = 10

// Stages enumerates every stage a lookup run may traverse, sent once in
// the opening config frame so clients can pre-render a progress UI.
var Stages = []progress.Stage{
	progress.StageResolve,
	progress.StageCacheCheck,
	progress.StageProviderFetch,
	progress.StageCluster,
	progress.StageSynthesize,
	progress.StageWordLevel,
	progress.StagePersist,
	progress.StageEnhance,
}

// Runner starts the pipeline in the background and returns once it
// completes (or ctx is cancelled). The tracker it publishes to, and the
// final result, are returned to Adapter separately so the adapter can
// both subscribe to progress and await completion.
type Runner func(ctx context.Context, tracker *progress.Tracker) (*model.SynthesizedEntry, error)

// DefinitionResolver fetches one completed Definition and its Examples by
// ID, so the completion sequence can emit each definition's body followed
// by its examples in batches of exampleBatchSize (spec.md §4.6), without
// the stream package depending on the store layer directly.
type DefinitionResolver func(ctx context.Context, definitionID int64) (*model.Definition, []model.Example, error)

// Adapter drives one SSE connection for one lookup run.
type Adapter struct {
	Heartbeat      time.Duration
	OverallTimeout time.Duration
}

func NewAdapter(heartbeat, overallTimeout time.Duration) *Adapter {
	return &Adapter{Heartbeat: heartbeat, OverallTimeout: overallTimeout}
}

// Serve runs run to completion while streaming progress to c, per the
// frame sequence in spec.md §4.6: config, progress*, completion_start,
// completion_chunk*, complete | error. resolve fetches each definition's
// body and examples for the completion_chunk stage; a nil resolve falls
// back to emitting bare definition_id chunks with no body or examples.
func (a *Adapter) Serve(c *gin.Context, run Runner, resolve DefinitionResolver) {
	setSSEHeaders(c.Writer)
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.OverallTimeout)
	defer cancel()

	tracker := progress.New()
	sub, unsubscribe := tracker.Subscribe()
	defer unsubscribe()

	sseWrite(c.Writer, "config", gin.H{"stages": Stages})
	flusher.Flush()

	type outcome struct {
		entry *model.SynthesizedEntry
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		entry, err := run(ctx, tracker)
		done <- outcome{entry: entry, err: err}
	}()

	heartbeat := time.NewTicker(a.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return

		case <-ctx.Done():
			sseWrite(c.Writer, "error", gin.H{"error": "operation timed out"})
			flusher.Flush()
			return

		case s, ok := <-sub:
			if !ok {
				continue
			}
			sseWrite(c.Writer, "progress", s)
			flusher.Flush()
			heartbeat.Reset(a.Heartbeat)

		case o := <-done:
			if o.err != nil {
				sseWrite(c.Writer, "error", gin.H{"error": o.err.Error()})
				flusher.Flush()
				return
			}
			a.sendCompletion(ctx, c.Writer, flusher, o.entry, resolve)
			return

		case <-heartbeat.C:
			sseComment(c.Writer, "keepalive")
			flusher.Flush()
		}
	}
}

// sendCompletion chunks a large SynthesizedEntry so the client isn't
// head-of-line blocked behind one giant frame: basic info, then one
// definition at a time, then that definition's examples in batches of
// exampleBatchSize, then a final complete frame.
func (a *Adapter) sendCompletion(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, entry *model.SynthesizedEntry, resolve DefinitionResolver) {
	sseWrite(w, "completion_start", gin.H{
		"word_id":      entry.WordID,
		"entry_id":     entry.ID,
		"etymology":    entry.Etymology,
		"access_count": entry.AccessCount,
	})
	flusher.Flush()

	for _, defID := range entry.DefinitionIDs {
		if resolve == nil {
			sseWrite(w, "completion_chunk", gin.H{"type": "definition", "definition_id": defID})
			flusher.Flush()
			continue
		}

		def, examples, err := resolve(ctx, defID)
		if err != nil {
			sseWrite(w, "completion_chunk", gin.H{"type": "definition", "definition_id": defID, "error": err.Error()})
			flusher.Flush()
			continue
		}
		sseWrite(w, "completion_chunk", gin.H{"type": "definition", "definition_id": defID, "definition": def})
		flusher.Flush()
		SendExampleBatches(w, flusher, defID, examples)
	}

	sseWrite(w, "complete", gin.H{"entry_id": entry.ID})
	flusher.Flush()
}

// SendExampleBatches emits a definition's Examples in fixed-size batches.
// sendCompletion calls this once per resolved definition; it stays exported
// so a handler that isn't going through Adapter.Serve (or a future
// definition-only resolver) can still emit the same framing.
func SendExampleBatches(w http.ResponseWriter, flusher http.Flusher, definitionID int64, examples []model.Example) {
	for i := 0; i < len(examples); i += exampleBatchSize {
		end := i + exampleBatchSize
		if end > len(examples) {
			end = len(examples)
		}
		sseWrite(w, "completion_chunk", gin.H{
			"type":          "examples",
			"definition_id": definitionID,
			"examples":      examples[i:end],
		})
		flusher.Flush()
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func sseWrite(w http.ResponseWriter, event string, data any) {
	payload := marshalPayload(data)
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

// sseComment writes a raw SSE comment line, the spec-sanctioned way to
// keep a connection alive without emitting a named event (spec.md §4.6).
func sseComment(w http.ResponseWriter, text string) {
	_, _ = fmt.Fprintf(w, ": %s\n\n", text)
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		bytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(bytes)
	}
}
