package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Rahi-Raushan/stu-mag-api/internal/service"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/response"
)

type reportRenderer interface {
	Requests(ctx context.Context, format service.ReportFormat) (*service.Report, error)
}

// ReportHandler exposes report export endpoints.
type ReportHandler struct {
	reports reportRenderer
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportRenderer) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Requests godoc
// @Summary Export the enrollment request register
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/requests [get]
func (h *ReportHandler) Requests(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	report, err := h.reports.Requests(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	c.Data(200, report.ContentType, report.Content)
}
