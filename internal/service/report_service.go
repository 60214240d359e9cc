package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/export"
)

// ReportFormat identifies a supported export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered export ready to stream to the client.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

type reportRequestLister interface {
	ListDetails(ctx context.Context) ([]models.EnrollmentRequestDetail, error)
}

// ReportService renders the enrollment request register as a document.
type ReportService struct {
	requests reportRequestLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs ReportService.
func NewReportService(requests reportRequestLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// Requests exports every enrollment request in the chosen format.
func (s *ReportService) Requests(ctx context.Context, format ReportFormat) (*Report, error) {
	format = ReportFormat(strings.ToLower(string(format)))
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	details, err := s.requests.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
	}

	table := export.Table{
		Title:   "Enrollment Requests",
		Headers: []string{"Request ID", "Student", "ERP Number", "Course", "Status", "Requested At"},
	}
	for _, detail := range details {
		table.Rows = append(table.Rows, []string{
			detail.ID,
			deref(detail.StudentName),
			deref(detail.StudentERP),
			deref(detail.CourseTitle),
			string(detail.Status),
			detail.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{
			FileName:    "enrollment-requests-" + stamp + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		content, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{
			FileName:    "enrollment-requests-" + stamp + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
