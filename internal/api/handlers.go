package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newscope/searcher/internal/dto"
	"github.com/newscope/searcher/internal/errors"
	"github.com/newscope/searcher/internal/search"
)

type handlers struct {
	svc *search.Service
	log *slog.Logger
}

// detailItem is one entry of the 422 response body.
type detailItem struct {
	Msg   string   `json:"msg"`
	Loc   []string `json:"loc,omitempty"`
	Input any      `json:"input,omitempty"`
}

type errorResponse struct {
	Detail []detailItem `json:"detail"`
}

func (h *handlers) searchArticles(c *gin.Context) {
	var q dto.ArticleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		renderBindError(c, err)
		return
	}
	q.Normalize(time.Now().UTC())
	if err := q.Validate(); err != nil {
		h.renderError(c, err)
		return
	}

	list, err := h.svc.SearchArticles(c.Request.Context(), &q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromArticles(list))
}

func (h *handlers) searchTopics(c *gin.Context) {
	var q dto.TopicQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		renderBindError(c, err)
		return
	}
	q.Normalize(time.Now().UTC())
	if err := q.Validate(); err != nil {
		h.renderError(c, err)
		return
	}

	list, err := h.svc.SearchTopics(c.Request.Context(), &q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTopics(list))
}

func (h *handlers) searchTopicBatches(c *gin.Context) {
	var q dto.TopicBatchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		renderBindError(c, err)
		return
	}
	q.Normalize(time.Now().UTC())
	if err := q.Validate(); err != nil {
		h.renderError(c, err)
		return
	}

	list, err := h.svc.SearchTopicBatches(c.Request.Context(), &q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTopicBatches(list))
}

func (h *handlers) searchCategories(c *gin.Context) {
	var q dto.CategoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		renderBindError(c, err)
		return
	}
	q.Normalize()
	if err := q.Validate(); err != nil {
		h.renderError(c, err)
		return
	}

	list, err := h.svc.SearchCategories(c.Request.Context(), &q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCategories(list))
}

// renderBindError covers undecodable query parameters (bad dates, bad
// numbers). They get the same 422 shape as semantic validation failures.
func renderBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, errorResponse{
		Detail: []detailItem{{Msg: err.Error()}},
	})
}

func (h *handlers) renderError(c *gin.Context, err error) {
	if e := errors.AsError(err); e != nil && e.Kind == errors.KindValidation {
		item := detailItem{Msg: e.Message, Input: e.Input}
		if e.Field != "" {
			item.Loc = []string{"query", e.Field}
		}
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: []detailItem{item}})
		return
	}

	h.log.Error("search failed", "path", c.Request.URL.Path, "error", err)
	if errors.IsKind(err, errors.KindStoreTransient) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "search backend unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
}
