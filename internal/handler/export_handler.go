package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courtside/courtside-api/internal/service"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/response"
)

// ExportHandler serves file exports.
type ExportHandler struct {
	exports *service.ExportService
	enabled bool
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, enabled bool) *ExportHandler {
	return &ExportHandler{exports: exports, enabled: enabled}
}

// CoachSessions godoc
// @Summary Export a coach's session schedule as CSV
// @Tags Exports
// @Produce text/csv
// @Param coachId path string true "Coach ID"
// @Success 200 {file} file
// @Router /coaches/{coachId}/sessions/export [get]
func (h *ExportHandler) CoachSessions(c *gin.Context) {
	if !h.enabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	payload, filename, err := h.exports.CoachSessionsCSV(c.Request.Context(), c.Param("coachId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// Bracket godoc
// @Summary Export a tournament bracket as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Tournament ID"
// @Success 200 {file} file
// @Router /tournaments/{id}/bracket/export [get]
func (h *ExportHandler) Bracket(c *gin.Context) {
	if !h.enabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	payload, filename, err := h.exports.BracketPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
