package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/insight-api/internal/dto"
	"github.com/lumenlearn/insight-api/internal/service"
	appErrors "github.com/lumenlearn/insight-api/pkg/errors"
)

type fakeReportSrv struct {
	performance *dto.CoursePerformanceResponse
	engagement  *dto.CourseEngagementResponse
	behavior    *dto.CourseBehaviorResponse
	insights    *dto.CourseInsightsResponse
	userReport  *dto.UserCourseReportResponse
	certificate *dto.CertificateResponse
	err         error

	lastCourseID int64
	lastUserID   int64
	lastWindow   int
}

func (f *fakeReportSrv) CoursePerformance(_ context.Context, courseID int64) (*dto.CoursePerformanceResponse, error) {
	f.lastCourseID = courseID
	return f.performance, f.err
}

func (f *fakeReportSrv) CourseEngagement(_ context.Context, courseID int64, windowDays int) (*dto.CourseEngagementResponse, error) {
	f.lastCourseID = courseID
	f.lastWindow = windowDays
	return f.engagement, f.err
}

func (f *fakeReportSrv) CourseBehavior(_ context.Context, courseID int64, windowDays int) (*dto.CourseBehaviorResponse, error) {
	f.lastCourseID = courseID
	f.lastWindow = windowDays
	return f.behavior, f.err
}

func (f *fakeReportSrv) CourseInsights(_ context.Context, courseID int64) (*dto.CourseInsightsResponse, error) {
	f.lastCourseID = courseID
	return f.insights, f.err
}

func (f *fakeReportSrv) UserCourseReport(_ context.Context, courseID, userID int64) (*dto.UserCourseReportResponse, error) {
	f.lastCourseID = courseID
	f.lastUserID = userID
	return f.userReport, f.err
}

func (f *fakeReportSrv) Certificate(_ context.Context, courseID, userID int64) (*dto.CertificateResponse, error) {
	f.lastCourseID = courseID
	f.lastUserID = userID
	return f.certificate, f.err
}

type fakeExportSrv struct {
	file       *service.ExportFile
	err        error
	lastFormat service.ExportFormat
}

func (f *fakeExportSrv) CourseInsightsExport(_ context.Context, _ int64, format service.ExportFormat) (*service.ExportFile, error) {
	f.lastFormat = format
	return f.file, f.err
}

func newTestRouter(insights insightService, exports exportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, "/api/v1", NewReportHandler(insights, exports), NewMetricsHandler(service.NewMetricsService(), nil))
	return r
}

func performGet(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestReportHandlerPerformanceSuccess(t *testing.T) {
	srv := &fakeReportSrv{performance: &dto.CoursePerformanceResponse{CourseID: 3, LearnerCount: 2}}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/3/performance")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), srv.lastCourseID)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, float64(2), envelope.Data["learner_count"])
}

func TestReportHandlerRejectsNonNumericCourseID(t *testing.T) {
	srv := &fakeReportSrv{}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/abc/performance")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), srv.lastCourseID)
}

func TestReportHandlerEngagementWindowBinding(t *testing.T) {
	srv := &fakeReportSrv{engagement: &dto.CourseEngagementResponse{CourseID: 3}}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/3/engagement?windowDays=14")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, srv.lastWindow)

	rec = performGet(r, "/api/v1/courses/3/engagement?windowDays=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performGet(r, "/api/v1/courses/3/engagement?windowDays=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerBehaviorDefaultsWindow(t *testing.T) {
	srv := &fakeReportSrv{behavior: &dto.CourseBehaviorResponse{CourseID: 3}}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/3/behavior")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, srv.lastWindow)
}

func TestReportHandlerUserReportParsesBothIDs(t *testing.T) {
	srv := &fakeReportSrv{userReport: &dto.UserCourseReportResponse{CourseID: 3, UserID: 7}}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/3/users/7/report")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), srv.lastCourseID)
	assert.Equal(t, int64(7), srv.lastUserID)

	rec = performGet(r, "/api/v1/courses/3/users/zero/report")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerNotFoundPassthrough(t *testing.T) {
	srv := &fakeReportSrv{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/404/insights")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandlerCertificate(t *testing.T) {
	srv := &fakeReportSrv{certificate: &dto.CertificateResponse{CourseID: 3, UserID: 7, Decision: "auto_issue"}}
	r := newTestRouter(srv, nil)

	rec := performGet(r, "/api/v1/courses/3/users/7/certificate")

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "auto_issue", envelope.Data["decision"])
}

func TestReportHandlerExport(t *testing.T) {
	exports := &fakeExportSrv{file: &service.ExportFile{
		Filename:    "insights_course_3.csv",
		ContentType: "text/csv",
		Payload:     []byte("User ID\n7\n"),
	}}
	r := newTestRouter(&fakeReportSrv{}, exports)

	rec := performGet(r, "/api/v1/courses/3/insights/export?format=csv")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, exports.lastFormat)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insights_course_3.csv")

	rec = performGet(r, "/api/v1/courses/3/insights/export?format=xlsx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performGet(r, "/api/v1/courses/3/insights/export")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestObservabilityEndpoints(t *testing.T) {
	r := newTestRouter(&fakeReportSrv{}, nil)

	assert.Equal(t, http.StatusOK, performGet(r, "/health").Code)
	assert.Equal(t, http.StatusOK, performGet(r, "/ready").Code)
	assert.Equal(t, http.StatusOK, performGet(r, "/metrics").Code)
	assert.Equal(t, http.StatusOK, performGet(r, "/api/v1/system/metrics").Code)
}
