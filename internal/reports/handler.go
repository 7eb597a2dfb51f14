package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projects/:projectId/reports/daily", h.DailyReport)
}

// DailyReport returns the daily verification report. The format query
// selects json (default), pdf or xlsx.
func (h *Handler) DailyReport(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	day := time.Now()
	if d := c.Query("date"); d != "" {
		day, err = time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
	}

	report, err := h.service.BuildDailyReport(c.Request.Context(), projectID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, report)
	case "pdf":
		data, err := h.service.RenderPDF(report)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name := fmt.Sprintf("daily-report-%s.pdf", report.Day)
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "application/pdf", data)
	case "xlsx":
		data, err := h.service.RenderExcel(report)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name := fmt.Sprintf("daily-report-%s.xlsx", report.Day)
		c.Header("Content-Disposition", "attachment; filename="+name)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format, want json, pdf or xlsx"})
	}
}
