package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rentaldesk/rental-service/internal/app/rental/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportServiceInterface
	now           func() time.Time
}

func NewReportHandler(reportService service.ReportServiceInterface) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		now:           time.Now,
	}
}

func (h *ReportHandler) GetSummary(c *gin.Context) {
	summary, err := h.reportService.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) GetRevenue(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}

	months, err := h.reportService.GetMonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":   year,
		"months": months,
	})
}

func (h *ReportHandler) GetSummaryPDF(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}

	data, err := h.reportService.SummaryPDF(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rental-summary-%d.pdf"`, year))
	c.Data(http.StatusOK, "application/pdf", data)
}

// year читает ?year=, по умолчанию текущий год
func (h *ReportHandler) year(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return h.now().Year(), true
	}

	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		respondMessage(c, http.StatusBadRequest, "year must be a valid year")
		return 0, false
	}
	return year, true
}
