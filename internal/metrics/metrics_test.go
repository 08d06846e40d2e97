package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAdapters(t *testing.T) {
	c := NewCollector(time.Minute)
	assert.Equal(t, 60.0, testutil.ToFloat64(c.TickInterval))

	c.TickObserve(time.Millisecond)
	c.TickObserve(time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Ticks))

	c.UpcomingInc(true)
	c.UpcomingInc(false)
	c.UpcomingInc(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpcomingLookups.WithLabelValues("upcoming")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.UpcomingLookups.WithLabelValues("none")))

	c.SelectionInc("route")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SelectionChanges.WithLabelValues("route")))

	c.FeedSetConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FeedConnected))
	c.FeedSetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.FeedConnected))

	c.FeedMessageInc(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FeedMessages.WithLabelValues("rejected")))

	c.RequestInc(http.StatusNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("404")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector(time.Minute)
	c.TickObserve(time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "schedule_ticks_total 1"))
	assert.True(t, strings.Contains(body, "schedule_tick_interval_seconds 60"))
}
