package handlers

import (
	"net/http"
	"strconv"

	"partobjaverse-viewer/internal/adapters/primary/http/dto"
	"partobjaverse-viewer/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.catalogSvc.Summary(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("get summary failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.catalogSvc.ListCategories(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list categories failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		items = append(items, dto.ToCategoryResponse(cat))
	}

	c.JSON(http.StatusOK, dto.ListCategoriesResponse{Items: items, Total: len(items)})
}

func (h *Handler) GetCategoryPage(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidCategory.Error()})
		return
	}

	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	view, err := h.catalogSvc.GetPage(c.Request.Context(), name, page)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPageResponse(view))
}

func (h *Handler) GetSample(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidUID.Error()})
		return
	}

	sv, err := h.catalogSvc.GetSample(c.Request.Context(), uid)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSampleResponse(sv))
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.catalogSvc.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("get stats failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.CategoryStatsResponse, 0, len(stats))
	for _, s := range stats {
		items = append(items, dto.ToCategoryStatsResponse(s))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.catalogSvc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
