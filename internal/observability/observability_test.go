package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propcrm/crm-service/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.RecordQuery("leads", "ok")
	m.RecordQuery("leads", "ok")
	m.RecordQuery("deals", "failed")
	m.RecordResolution("resolved")
	m.RecordError("/dashboard/stats", "GET", "INTERNAL_ERROR")
	m.ObserveAggregation(10 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queryTotal.WithLabelValues("leads", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryTotal.WithLabelValues("deals", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutionsTotal.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorTotal.WithLabelValues("/dashboard/stats", "GET", "INTERNAL_ERROR")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Second)
	m.RecordQuery("leads", "ok")
	m.RecordResolution("resolved")
	m.ObserveAggregation(time.Second)
}

func TestRequestLogger_RecordsRequest(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("/ping", "GET", "200")))
}
