package handlers

import (
	"net/http"

	"clinicportal/internal/services"

	"github.com/gin-gonic/gin"
)

type ClinicianHandler struct {
	reports services.ReportService
}

func NewClinicianHandler(reports services.ReportService) *ClinicianHandler {
	return &ClinicianHandler{reports: reports}
}

// Data — три последних отправки пациентов с risk-флагами.
func (h *ClinicianHandler) Data(c *gin.Context) {
	rows, err := h.reports.Review()
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []*services.ReviewRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// @Summary      PDF-отчёт по последним отправкам
// @Tags         Clinician
// @Produce      application/pdf
// @Param        bmi       query  string  false  "low | medium | high | all"
// @Param        feedback  query  string  false  "low | high | all"
// @Success      200  {file}  binary
// @Router       /export-pdf [get]
func (h *ClinicianHandler) ExportPDF(c *gin.Context) {
	bmiFilter := c.DefaultQuery("bmi", "all")
	fbFilter := c.DefaultQuery("feedback", "all")

	data, err := h.reports.ExportPDF(bmiFilter, fbFilter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=clinician_report_last3.pdf`)
	c.Data(http.StatusOK, "application/pdf", data)
}
