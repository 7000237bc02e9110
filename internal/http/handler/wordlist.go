package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/internal/http/dto"
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/store"
	"lexigraph.dev/dictionary/internal/wordlist"
)

// WordListHandler exposes WordList CRUD and keeps each list's corpus
// indexes current (spec.md §4.7), via wordlist.Service.
type WordListHandler struct {
	service *wordlist.Service
}

func NewWordListHandler(service *wordlist.Service) *WordListHandler {
	return &WordListHandler{service: service}
}

func (h *WordListHandler) Create(c *gin.Context) {
	var req dto.CreateWordListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
		return
	}

	wl := &model.WordList{
		Name:       req.Name,
		HashID:     req.HashID,
		OwnerID:    req.OwnerID,
		Visibility: req.Visibility,
	}
	if wl.Visibility == "" {
		wl.Visibility = model.VisibilityPrivate
	}
	if err := h.service.Create(c.Request.Context(), wl); err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, dto.ToWordListResponse(wl))
}

func (h *WordListHandler) Get(c *gin.Context) {
	listID, err := parseListID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	wl, err := h.service.Get(c.Request.Context(), listID)
	if err != nil {
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, dto.ToWordListResponse(wl))
}

func (h *WordListHandler) ListByOwner(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "owner_id", Message: "required"}))
		return
	}
	lists, err := h.service.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		apierr.Abort(c, apierr.Internal(err))
		return
	}
	out := make([]dto.WordListResponse, len(lists))
	for i := range lists {
		out[i] = dto.ToWordListResponse(&lists[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *WordListHandler) Update(c *gin.Context) {
	listID, err := parseListID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req dto.UpdateWordListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
		return
	}

	wl, err := h.service.Get(c.Request.Context(), listID)
	if err != nil {
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	wl.Name = req.Name
	wl.HashID = req.HashID
	wl.Visibility = req.Visibility
	current := wl.Version
	wl.Version = req.Version

	if err := h.service.Update(c.Request.Context(), wl); err != nil {
		if err == store.ErrVersionConflict {
			apierr.Abort(c, apierr.VersionConflict(req.Version, current))
			return
		}
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, dto.ToWordListResponse(wl))
}

func (h *WordListHandler) Delete(c *gin.Context) {
	listID, err := parseListID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), listID); err != nil {
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WordListHandler) UpsertItem(c *gin.Context) {
	listID, err := parseListID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	var req dto.UpsertWordListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "body", Message: err.Error()}))
		return
	}

	item := model.WordListItem{
		WordID:       req.WordID,
		DefinitionID: req.DefinitionID,
		MasteryLevel: req.MasteryLevel,
		Temperature:  model.TemperatureCold,
		Notes:        req.Notes,
		Tags:         req.Tags,
		AddedAt:      time.Now(),
	}
	if err := h.service.UpsertItem(c.Request.Context(), listID, item); err != nil {
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WordListHandler) RemoveItem(c *gin.Context) {
	listID, err := parseListID(c)
	if err != nil {
		apierr.Abort(c, err)
		return
	}
	wordID, err := strconv.ParseInt(c.Param("word_id"), 10, 64)
	if err != nil {
		apierr.Abort(c, apierr.Validation(apierr.Detail{Field: "word_id", Message: "must be an integer"}))
		return
	}
	if err := h.service.RemoveItem(c.Request.Context(), listID, wordID); err != nil {
		apierr.Abort(c, notFoundOr(err, "wordlist", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

func parseListID(c *gin.Context) (int64, error) {
	listID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apierr.Validation(apierr.Detail{Field: "id", Message: "must be an integer"})
	}
	return listID, nil
}

func notFoundOr(err error, resource, id string) error {
	if err == store.ErrNotFound {
		return apierr.NotFound(resource, id)
	}
	return apierr.Internal(err)
}
