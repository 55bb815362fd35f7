package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fixora/fixora-service/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	"github.com/stretchr/testify/assert"
)

func TestRouter_ProbesAndSwagger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New("fixora-test", Handlers{
		Reports:  handler.NewReportHandler(nil),
		Feedback: handler.NewFeedbackHandler(nil, nil, nil),
		Uploads:  handler.NewUploadHandler(nil),
		Users:    handler.NewUserHandler(nil),
	})

	tests := []struct {
		path string
		code int
	}{
		{path: paths.PathHealth, code: http.StatusOK},
		{path: paths.PathReady, code: http.StatusOK},
		{path: paths.PathSwagger, code: http.StatusFound},
		{path: paths.PathSwagger + "/openapi.json", code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/uploads", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
