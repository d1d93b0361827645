package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsDrawEvents(t *testing.T) {
	before := testutil.ToFloat64(drawsSettled.WithLabelValues("grand"))
	undone := testutil.ToFloat64(drawsUndone.WithLabelValues("grand"))

	var r Recorder
	r.Publish(lottery.Event{Type: lottery.EventDrawSettled, TierKey: "grand", Remaining: 2, PoolSize: 9})
	r.Publish(lottery.Event{Type: lottery.EventUndo, TierKey: "grand", Remaining: 3, PoolSize: 10})

	assert.Equal(t, before+1, testutil.ToFloat64(drawsSettled.WithLabelValues("grand")))
	assert.Equal(t, undone+1, testutil.ToFloat64(drawsUndone.WithLabelValues("grand")))
	assert.Equal(t, 3.0, testutil.ToFloat64(tierRemaining.WithLabelValues("grand")))
	assert.Equal(t, 10.0, testutil.ToFloat64(poolSize))
}

func TestRecorderCountsSessionOutcomes(t *testing.T) {
	partial := testutil.ToFloat64(multiRound.WithLabelValues("partial"))
	Recorder{}.Publish(lottery.Event{Type: lottery.EventMultiRoundPartial, TierKey: "grand"})
	assert.Equal(t, partial+1, testutil.ToFloat64(multiRound.WithLabelValues("partial")))
}

func TestInstrumentAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Instrument())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping", "200"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "lottery_http_requests_total"))
}
