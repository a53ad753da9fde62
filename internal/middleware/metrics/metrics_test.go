package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(reg *prometheus.Registry) (*gin.Engine, *Metrics) {
	gin.SetMode(gin.TestMode)
	m := New(reg)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/:code", func(c *gin.Context) { c.Status(http.StatusFound) })
	r.GET("/metrics", Handler(reg))
	return r, m
}

func TestMiddleware_CountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, m := setupRouter(reg)

	for _, path := range []string{"/abc", "/def", "/ghi"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/nowhere/at/all", nil))

	assert.InDelta(t, 3, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/:code", "302")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("POST", "unmatched", "404")), 0)
}

func TestHandler_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, _ := setupRouter(reg)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abc", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `shortlink_http_requests_total{method="GET",route="/:code",status="302"} 1`))
	assert.Contains(t, body, "shortlink_http_request_duration_seconds")
}
