package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/internal/http/dto"
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/pipeline"
	"lexigraph.dev/dictionary/internal/progress"
	"lexigraph.dev/dictionary/internal/store"
	"lexigraph.dev/dictionary/internal/stream"
)

// LookupHandler serves the unary and streaming lookup endpoints over one
// shared pipeline.Lookup (spec.md §4.3, §4.6).
type LookupHandler struct {
	lookup  *pipeline.Lookup
	adapter *stream.Adapter
	stores  *store.Stores
}

func NewLookupHandler(lookup *pipeline.Lookup, adapter *stream.Adapter, stores *store.Stores) *LookupHandler {
	return &LookupHandler{lookup: lookup, adapter: adapter, stores: stores}
}

// resolveDefinition fetches one Definition and its Examples for the
// streaming completion sequence's per-definition chunk (spec.md §4.6).
func (h *LookupHandler) resolveDefinition(ctx context.Context, definitionID int64) (*model.Definition, []model.Example, error) {
	def, err := h.stores.Definitions().GetByID(ctx, definitionID)
	if err != nil {
		return nil, nil, err
	}
	examples, err := h.stores.Examples().ListByDefinition(ctx, definitionID)
	if err != nil {
		return nil, nil, err
	}
	return def, examples, nil
}

// Lookup runs the pipeline to completion and returns the entry as JSON.
func (h *LookupHandler) Lookup(c *gin.Context) {
	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
		return
	}

	entry, err := h.lookup.Run(c.Request.Context(), req.ToInput(), nil)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// LookupStream runs the pipeline over an SSE connection, relaying progress
// as it happens (spec.md §4.6).
func (h *LookupHandler) LookupStream(c *gin.Context) {
	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
		return
	}
	input := req.ToInput()

	h.adapter.Serve(c, func(ctx context.Context, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
		return h.lookup.Run(ctx, input, tracker)
	}, h.resolveDefinition)
}
