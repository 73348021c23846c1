package handlers

import (
	"net/http"
	"time"

	"go-task-organizer/internal/export"

	"github.com/gin-gonic/gin"
)

// Export streams the whole organizer in the format named in the path.
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.org.Snapshot()
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", "attachment;filename="+format.Filename(time.Now()))
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, snap); err != nil {
		h.logger.Error("export failed", "format", format, "err", err)
	}
}

// Save commits pending changes to the backing store.
func (h *Handler) Save(c *gin.Context) {
	if err := h.org.Save(c.Request.Context()); err != nil {
		if h.ws != nil {
			h.ws.SendSaveFailed(err.Error())
		}
		h.respondError(c, err)
		return
	}
	version := h.org.Store().Version()
	if h.ws != nil {
		h.ws.SendSaved(version)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved", "version": version})
}
