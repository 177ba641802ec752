package handlers

import (
	"context"
	"errors"
	"net/http"

	"assessment-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Service *service.ReportService
}

func NewReportHandler(s *service.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// GetReport scores the session and returns the report.
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.Service.BuildReport(context.Background(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrSessionNotScorable):
		c.JSON(http.StatusConflict, gin.H{"error": "Session has no questions yet"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, report)
	}
}

// GetReportsByUser lists previously generated reports for a user.
func (h *ReportHandler) GetReportsByUser(c *gin.Context) {
	reports, err := h.Service.ReportsForUser(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}
