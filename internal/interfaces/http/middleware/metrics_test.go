package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ledgerbook/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func newMeteredRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/invoices/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error"})
	})
	router.POST("/admin", func(c *gin.Context) {
		c.Set(JWTRoleKey, "admin")
		c.JSON(http.StatusCreated, gin.H{"message": "created"})
	})
	return router, reader
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	for _, cfg := range []HTTPMetricsConfig{
		{Enabled: false},
		{Enabled: true, MeterProvider: nil},
	} {
		router := gin.New()
		router.Use(HTTPMetrics(cfg))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHTTPMetricsWithMeter_Disabled(t *testing.T) {
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), false))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	rm := collectMetrics(t, reader)
	assert.Nil(t, findMetricByName(rm, "http_server_request_total"))
}

func TestHTTPMetricsWithMeter_RequestCounter(t *testing.T) {
	router, reader := newMeteredRouter(t)

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	}

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	route, ok := sum.DataPoints[0].Attributes.Value(telemetry.AttrHTTPRoute)
	require.True(t, ok)
	assert.Equal(t, "/ok", route.AsString())
}

func TestHTTPMetricsWithMeter_StatusCodes(t *testing.T) {
	router, reader := newMeteredRouter(t)

	for _, path := range []string{"/ok", "/ok", "/error", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rm := collectMetrics(t, reader)
	sum := findMetricByName(rm, "http_server_request_total").Data.(metricdata.Sum[int64])

	byStatus := map[int64]int64{}
	routes := map[string]bool{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		byStatus[status.AsInt64()] += dp.Value
		routes[route.AsString()] = true
	}
	assert.Equal(t, int64(2), byStatus[http.StatusOK])
	assert.Equal(t, int64(1), byStatus[http.StatusInternalServerError])
	assert.Equal(t, int64(1), byStatus[http.StatusNotFound])
	assert.True(t, routes["unknown"])
}

func TestHTTPMetricsWithMeter_RoutePattern(t *testing.T) {
	router, reader := newMeteredRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/2", nil))

	rm := collectMetrics(t, reader)
	sum := findMetricByName(rm, "http_server_request_total").Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)

	route, _ := sum.DataPoints[0].Attributes.Value(telemetry.AttrHTTPRoute)
	assert.Equal(t, "/invoices/:id", route.AsString())
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestHTTPMetricsWithMeter_UserRole(t *testing.T) {
	router, reader := newMeteredRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(`{}`)))

	rm := collectMetrics(t, reader)
	sum := findMetricByName(rm, "http_server_request_total").Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)

	role, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("user_role"))
	require.True(t, ok)
	assert.Equal(t, "admin", role.AsString())
}

func TestHTTPMetricsWithMeter_Histograms(t *testing.T) {
	router, reader := newMeteredRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(`{"a":1}`)))

	rm := collectMetrics(t, reader)

	duration := findMetricByName(rm, "http_server_request_duration_seconds")
	require.NotNil(t, duration)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	reqSize := findMetricByName(rm, "http_server_request_size_bytes")
	require.NotNil(t, reqSize)
	sizeHist := reqSize.Data.(metricdata.Histogram[float64])
	assert.Equal(t, float64(7), sizeHist.DataPoints[0].Sum)

	assert.NotNil(t, findMetricByName(rm, "http_server_response_size_bytes"))
}

func TestHTTPMetricsWithMeter_ActiveRequestsReturnToZero(t *testing.T) {
	router, reader := newMeteredRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_active_requests")
	require.NotNil(t, m)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value)
}
