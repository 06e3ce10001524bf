package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: JobReasonDeadlineExceeded},
		{name: "wrapped_deadline", err: fmt.Errorf("sweep: %w", context.DeadlineExceeded), want: JobReasonDeadlineExceeded},
		{name: "canceled", err: context.Canceled, want: JobReasonCanceled},
		{name: "unknown", err: errors.New("boom"), want: JobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyJobReason(tc.err))
		})
	}
}

func TestReminderCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := New(Config{ServiceName: "invoicedesk", Environment: "test"}, registry)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReminder(ctx, "template")
	m.RecordReminder(ctx, "template")
	m.RecordReminder(ctx, "ai")
	m.RecordFallback(ctx, FallbackReasonTimeout)
	m.RecordDispatch(ctx, "ultramsg", nil)
	m.AddJobProcessed("auto_reminders", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.remindersGenerated.WithLabelValues("template")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remindersGenerated.WithLabelValues("ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderFallbacks.WithLabelValues(FallbackReasonTimeout)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reminderDispatches.WithLabelValues("ultramsg", "sent")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.jobProcessed.WithLabelValues("auto_reminders")))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first, err := New(Config{}, registry)
	require.NoError(t, err)
	second, err := New(Config{}, registry)
	require.NoError(t, err)

	first.RecordReminder(context.Background(), "ai")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.remindersGenerated.WithLabelValues("ai")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordReminder(context.Background(), "template")
		m.ObserveAIRequest(time.Second)
		m.IncJobError("auto_reminders", errors.New("boom"))
	})
}

func TestGinMiddlewareObservesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(Config{}, registry)
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/invoices/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/inv_1", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}
