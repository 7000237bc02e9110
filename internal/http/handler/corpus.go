package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/internal/corpus"
	"lexigraph.dev/dictionary/internal/http/dto"
)

const defaultSearchMaxResults = 20
const defaultSearchMinScore = 0.3

// CorpusHandler exposes fuzzy/semantic search over a pre-built corpus
// (spec.md §4.7). Corpus construction and invalidation happen out of
// band, driven by wordlist mutation, not by this handler.
type CorpusHandler struct {
	corpora *corpus.Manager
}

func NewCorpusHandler(corpora *corpus.Manager) *CorpusHandler {
	return &CorpusHandler{corpora: corpora}
}

func (h *CorpusHandler) Search(c *gin.Context) {
	name := c.Param("name")

	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "query", Message: err.Error()}))
		return
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSearchMaxResults
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = defaultSearchMinScore
	}

	results, err := h.corpora.Search(c.Request.Context(), name, req.Query, maxResults, minScore, req.Semantic)
	if err != nil {
		if err == corpus.ErrCorpusNotBuilt {
			apierr.Abort(c, apierr.NotFound("corpus", name))
			return
		}
		apierr.Abort(c, apierr.Internal(err))
		return
	}

	out := make([]dto.SearchResultResponse, len(results))
	for i, r := range results {
		out[i] = dto.SearchResultResponse{Text: r.Text, Score: r.Score}
	}
	c.JSON(http.StatusOK, out)
}
