package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lumenlearn/insight-api/internal/analytics"
	"github.com/lumenlearn/insight-api/internal/dto"
	appErrors "github.com/lumenlearn/insight-api/pkg/errors"
)

type fakeInsightProvider struct {
	insights *dto.CourseInsightsResponse
	err      error
}

func (f *fakeInsightProvider) CourseInsights(context.Context, int64) (*dto.CourseInsightsResponse, error) {
	return f.insights, f.err
}

func sampleInsights() *dto.CourseInsightsResponse {
	completion := 0.5
	return &dto.CourseInsightsResponse{
		PerUserStats: []dto.LearnerStats{
			{
				UserID:         7,
				CompletionRate: &completion,
				QuizAttempts:   2,
				StudyMinutes:   42.5,
				TabOutCount:    1,
				InactiveDays:   3,
				Pattern:        analytics.PatternInterrupted,
			},
		},
		Insights: []analytics.RiskProfile{
			{UserID: 7, RiskScore: 0.52, RiskLevel: analytics.RiskMedium, Verdict: analytics.VerdictImproving},
		},
	}
}

func TestCourseInsightsExportCSV(t *testing.T) {
	svc := NewExportService(&fakeInsightProvider{insights: sampleInsights()}, nil, nil, zap.NewNop(), true)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	file, err := svc.CourseInsightsExport(context.Background(), 3, ExportFormatCSV)
	require.NoError(t, err)
	require.Equal(t, "insights_course_3_20260828_120000.csv", file.Filename)
	require.Equal(t, "text/csv", file.ContentType)

	body := string(file.Payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "User ID")
	require.Contains(t, lines[0], "Verdict")
	require.Contains(t, lines[1], "7")
	require.Contains(t, lines[1], "0.50")
	require.Contains(t, lines[1], "improving")
	require.Contains(t, lines[1], "n/a")
}

func TestCourseInsightsExportPDF(t *testing.T) {
	svc := NewExportService(&fakeInsightProvider{insights: sampleInsights()}, nil, nil, zap.NewNop(), true)

	file, err := svc.CourseInsightsExport(context.Background(), 3, ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, strings.HasPrefix(string(file.Payload), "%PDF"))
}

func TestCourseInsightsExportDisabled(t *testing.T) {
	svc := NewExportService(&fakeInsightProvider{insights: sampleInsights()}, nil, nil, zap.NewNop(), false)

	_, err := svc.CourseInsightsExport(context.Background(), 3, ExportFormatCSV)
	require.Error(t, err)
	typed := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrForbidden.Code, typed.Code)
}

func TestCourseInsightsExportUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&fakeInsightProvider{insights: sampleInsights()}, nil, nil, zap.NewNop(), true)

	_, err := svc.CourseInsightsExport(context.Background(), 3, ExportFormat("xlsx"))
	require.Error(t, err)
	typed := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}
