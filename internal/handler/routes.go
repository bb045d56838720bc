package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts all API and observability endpoints.
func RegisterRoutes(r *gin.Engine, apiPrefix string, reports *ReportHandler, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)

	api := r.Group(apiPrefix)
	api.GET("/system/metrics", metrics.Snapshot)

	courses := api.Group("/courses/:id")
	courses.GET("/performance", reports.Performance)
	courses.GET("/engagement", reports.Engagement)
	courses.GET("/behavior", reports.Behavior)
	courses.GET("/insights", reports.Insights)
	courses.GET("/insights/export", reports.Export)
	courses.GET("/users/:userId/report", reports.UserReport)
	courses.GET("/users/:userId/certificate", reports.Certificate)
}
