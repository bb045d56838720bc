package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlearn/insight-api/internal/dto"
	"github.com/lumenlearn/insight-api/pkg/export"
	appErrors "github.com/lumenlearn/insight-api/pkg/errors"
)

// ExportFormat enumerates supported download formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type insightProvider interface {
	CourseInsights(ctx context.Context, courseID int64) (*dto.CourseInsightsResponse, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders per-learner insight tables as CSV or PDF downloads.
type ExportService struct {
	insights insightProvider
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
	enabled  bool
}

// NewExportService constructs an ExportService.
func NewExportService(insights insightProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		insights: insights,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		now:      time.Now,
		enabled:  enabled,
	}
}

// CourseInsightsExport composes the insights payload and renders it in the
// requested format.
func (s *ExportService) CourseInsightsExport(ctx context.Context, courseID int64, format ExportFormat) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	insights, err := s.insights.CourseInsights(ctx, courseID)
	if err != nil {
		return nil, err
	}
	dataset := buildInsightDataset(insights)
	title := fmt.Sprintf("Course %d Learner Insights", courseID)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	timestamp := s.now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("insights_course_%d_%s.%s", courseID, timestamp, format)
	return &ExportFile{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildInsightDataset(insights *dto.CourseInsightsResponse) export.Dataset {
	headers := []string{
		"User ID", "Completion Rate", "Quiz Average", "Quiz Attempts",
		"Study Minutes", "Tab Outs", "Inactive Days", "Pattern",
		"Risk Score", "Risk Level", "Verdict",
	}

	verdicts := make(map[int64]struct {
		score   float64
		level   string
		verdict string
	}, len(insights.Insights))
	for _, profile := range insights.Insights {
		verdicts[profile.UserID] = struct {
			score   float64
			level   string
			verdict string
		}{profile.RiskScore, string(profile.RiskLevel), profile.Verdict}
	}

	rows := make([]map[string]string, 0, len(insights.PerUserStats))
	for _, stat := range insights.PerUserStats {
		risk := verdicts[stat.UserID]
		rows = append(rows, map[string]string{
			"User ID":         fmt.Sprintf("%d", stat.UserID),
			"Completion Rate": formatRate(stat.CompletionRate),
			"Quiz Average":    formatRate(stat.QuizAverage),
			"Quiz Attempts":   fmt.Sprintf("%d", stat.QuizAttempts),
			"Study Minutes":   fmt.Sprintf("%.1f", stat.StudyMinutes),
			"Tab Outs":        fmt.Sprintf("%d", stat.TabOutCount),
			"Inactive Days":   fmt.Sprintf("%d", stat.InactiveDays),
			"Pattern":         string(stat.Pattern),
			"Risk Score":      fmt.Sprintf("%.3f", risk.score),
			"Risk Level":      risk.level,
			"Verdict":         risk.verdict,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatRate(rate *float64) string {
	if rate == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *rate)
}
