package handlers

import (
	"strconv"

	"office-panel/internal/audit"
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, dashboard)
}

func (h *ReportHandler) Report(c *gin.Context) {
	report, err := h.reports.Report(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, report)
}

// GetAuditLogs returns the most recent audit entries, newest first
func (h *ReportHandler) GetAuditLogs(c *gin.Context) {
	limit := audit.DefaultRecentLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= audit.MaxRecentLimit {
			limit = parsed
		}
	}

	logs, err := h.reports.AuditLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"logs": logs})
}
