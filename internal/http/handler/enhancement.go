package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/internal/enhancement"
	"lexigraph.dev/dictionary/internal/http/dto"
	"lexigraph.dev/dictionary/internal/store"
)

// EnhancementHandler exposes on-demand component regeneration for a
// Word's SynthesizedEntry (spec.md §4.4).
type EnhancementHandler struct {
	stores *store.Stores
	engine *enhancement.Engine
}

func NewEnhancementHandler(stores *store.Stores, engine *enhancement.Engine) *EnhancementHandler {
	return &EnhancementHandler{stores: stores, engine: engine}
}

// Regenerate resolves the normalized word's Word and SynthesizedEntry and
// dispatches the enhancement grid over its Definitions.
func (h *EnhancementHandler) Regenerate(c *gin.Context) {
	normalized := c.Param("word")
	language := c.DefaultQuery("language", "en")

	var req dto.RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
			return
		}
	}

	ctx := c.Request.Context()
	word, err := h.stores.Words().GetByNormalized(ctx, normalized, language)
	if err != nil {
		if err == store.ErrNotFound {
			apierr.Abort(c, apierr.NotFound("word", normalized))
			return
		}
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	entry, err := h.stores.SynthesizedEntries().GetByWord(ctx, word.ID)
	if err != nil {
		if err == store.ErrNotFound {
			apierr.Abort(c, apierr.NotFound("entry", normalized))
			return
		}
		apierr.Abort(c, apierr.Internal(err))
		return
	}

	components, err := enhancement.ByNames(req.Components)
	if err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "components", Message: err.Error()}))
		return
	}

	failures, err := h.engine.Regenerate(ctx, *entry, *word, req.Force, components)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}

	resp := dto.RegenerateResponse{}
	for _, f := range failures {
		resp.Failures = append(resp.Failures, dto.FailureResponse{
			DefinitionID: f.DefinitionID,
			Component:    f.Component,
			Error:        f.Err.Error(),
		})
	}
	c.JSON(http.StatusOK, resp)
}
