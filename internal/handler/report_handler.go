package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/insight-api/internal/dto"
	"github.com/lumenlearn/insight-api/internal/service"
	appErrors "github.com/lumenlearn/insight-api/pkg/errors"
	"github.com/lumenlearn/insight-api/pkg/response"
)

type insightService interface {
	CoursePerformance(ctx context.Context, courseID int64) (*dto.CoursePerformanceResponse, error)
	CourseEngagement(ctx context.Context, courseID int64, windowDays int) (*dto.CourseEngagementResponse, error)
	CourseBehavior(ctx context.Context, courseID int64, windowDays int) (*dto.CourseBehaviorResponse, error)
	CourseInsights(ctx context.Context, courseID int64) (*dto.CourseInsightsResponse, error)
	UserCourseReport(ctx context.Context, courseID, userID int64) (*dto.UserCourseReportResponse, error)
	Certificate(ctx context.Context, courseID, userID int64) (*dto.CertificateResponse, error)
}

type exportService interface {
	CourseInsightsExport(ctx context.Context, courseID int64, format service.ExportFormat) (*service.ExportFile, error)
}

// windowQuery carries the optional lookback override for trend endpoints.
type windowQuery struct {
	WindowDays int `form:"windowDays" binding:"omitempty,min=1,max=365"`
}

// exportQuery carries the requested download format.
type exportQuery struct {
	Format string `form:"format" binding:"required,oneof=csv pdf"`
}

// ReportHandler wires the insight services to HTTP endpoints.
type ReportHandler struct {
	insights insightService
	exports  exportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(insights insightService, exports exportService) *ReportHandler {
	return &ReportHandler{insights: insights, exports: exports}
}

// Performance godoc
// @Summary Course performance summary
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/performance [get]
func (h *ReportHandler) Performance(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.insights.CoursePerformance(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Engagement godoc
// @Summary Course engagement trends
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Param windowDays query int false "Lookback window in days (1-365, default 30)"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/engagement [get]
func (h *ReportHandler) Engagement(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query windowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "windowDays must be an integer between 1 and 365"))
		return
	}
	report, err := h.insights.CourseEngagement(c.Request.Context(), courseID, query.WindowDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Behavior godoc
// @Summary Course behavior classification
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Param windowDays query int false "Lookback window in days (1-365, default 30)"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/behavior [get]
func (h *ReportHandler) Behavior(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query windowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "windowDays must be an integer between 1 and 365"))
		return
	}
	report, err := h.insights.CourseBehavior(c.Request.Context(), courseID, query.WindowDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Insights godoc
// @Summary Full instructor insights for a course
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/insights [get]
func (h *ReportHandler) Insights(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.insights.CourseInsights(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// UserReport godoc
// @Summary Per-learner course report
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/users/{userId}/report [get]
func (h *ReportHandler) UserReport(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	report, err := h.insights.UserCourseReport(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Certificate godoc
// @Summary Certificate eligibility decision
// @Tags Reports
// @Produce json
// @Param id path int true "Course ID"
// @Param userId path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/users/{userId}/certificate [get]
func (h *ReportHandler) Certificate(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	decision, err := h.insights.Certificate(c.Request.Context(), courseID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision)
}

// Export godoc
// @Summary Download per-learner insights as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param id path int true "Course ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /courses/{id}/insights/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var query exportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	file, err := h.exports.CourseInsightsExport(c.Request.Context(), courseID, service.ExportFormat(query.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// pathID parses a positive integer path parameter, rejecting non-numeric
// identifiers before any fetch happens.
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}
