package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/fixora/fixora-service/api"
	"github.com/fixora/fixora-service/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Reports  *handler.ReportHandler
	Feedback *handler.FeedbackHandler
	Uploads  *handler.UploadHandler
	Users    *handler.UserHandler
	// Ping backs the readiness probe; nil means always ready.
	Ping func(ctx context.Context) error
}

func New(serviceName string, h Handlers) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(paths.PathHealth, handler.Health)
	r.GET(paths.PathReady, handler.Ready(h.Ping))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = paths.PathSwagger + "/index.html"
			c.Request.RequestURI = paths.PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1", otelgin.Middleware(serviceName))
	{
		v1.POST("/reports", h.Reports.Create)
		v1.GET("/reports", h.Reports.List)
		v1.GET("/reports/:id", h.Reports.Get)
		v1.PUT("/reports/:id/status", h.Reports.UpdateStatus)
		v1.PUT("/reports/:id/assignment", h.Reports.Assign)
		v1.POST("/reports/:id/proof", h.Reports.AddProof)

		v1.POST("/reports/:id/feedback-request", h.Feedback.CreateRequest)
		v1.GET("/reports/:id/feedback", h.Feedback.ReportFeedback)
		v1.POST("/feedback-requests/:id/submit", h.Feedback.Submit)
		v1.GET("/users/:id/feedback-requests/pending", h.Feedback.Pending)
		v1.GET("/users/:id/feedback-reminder", h.Feedback.Reminder)
		v1.GET("/organizations/:id/feedback-stats", h.Feedback.OrganizationStats)
		v1.GET("/feedback", h.Feedback.StaffFeedback)
		v1.POST("/admin/feedback/backfill", h.Feedback.Backfill)

		v1.PUT("/users/:id/push-token", h.Users.UpdatePushToken)
		v1.POST("/uploads", h.Uploads.Upload)
	}

	return r
}
