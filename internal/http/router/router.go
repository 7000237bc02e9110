// Package router wires gin route groups onto the handlers in
// internal/http/handler.
package router

import (
	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/internal/http/handler"
)

// Handlers bundles every handler the router wires, constructed once at
// startup by internal/service.
type Handlers struct {
	Lookup      *handler.LookupHandler
	Enhancement *handler.EnhancementHandler
	Corpus      *handler.CorpusHandler
	WordLists   *handler.WordListHandler
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/lookup", h.Lookup.Lookup)
		v1.POST("/lookup/stream", h.Lookup.LookupStream)

		v1.POST("/words/:word/regenerate", h.Enhancement.Regenerate)

		v1.GET("/corpus/:name/search", h.Corpus.Search)

		wordlists := v1.Group("/wordlists")
		{
			wordlists.POST("", h.WordLists.Create)
			wordlists.GET("", h.WordLists.ListByOwner)
			wordlists.GET("/:id", h.WordLists.Get)
			wordlists.PUT("/:id", h.WordLists.Update)
			wordlists.DELETE("/:id", h.WordLists.Delete)
			wordlists.PUT("/:id/words", h.WordLists.UpsertItem)
			wordlists.DELETE("/:id/words/:word_id", h.WordLists.RemoveItem)
		}
	}
}
