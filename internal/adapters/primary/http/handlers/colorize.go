package handlers

import (
	"net/http"
	"strconv"

	"partobjaverse-viewer/internal/adapters/primary/http/dto"
	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListColorizeRecords(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	status := c.Query("status")
	if status != "" && !domain.ColorizeStatus(status).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidStatus.Error()})
		return
	}

	filter := ports.ColorizeRecordFilter{
		Category: c.Query("category"),
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	}

	recs, total, err := h.catalogSvc.ListColorizeRecords(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list colorize records failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ColorizeRecordResponse, 0, len(recs))
	for _, r := range recs {
		items = append(items, dto.ToColorizeRecordResponse(r))
	}

	c.JSON(http.StatusOK, dto.ListColorizeRecordsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

// ColorizeSample recolors one sample. A failed attempt is still 200 with
// status FAILED in the body.
func (h *Handler) ColorizeSample(c *gin.Context) {
	uid := c.Param("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidUID.Error()})
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	rec, err := h.colorizeSvc.ColorizeUID(c.Request.Context(), uid, force)
	if err != nil {
		log.WithError(err).WithField("uid", uid).Error("colorize sample failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToColorizeRecordResponse(rec))
}
