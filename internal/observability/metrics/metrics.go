package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	FallbackReasonDisabled = "disabled"
	FallbackReasonTimeout  = "timeout"
	FallbackReasonEmpty    = "empty_response"
	FallbackReasonError    = "upstream_error"
)

const (
	JobReasonDeadlineExceeded = "deadline_exceeded"
	JobReasonCanceled         = "canceled"
	JobReasonUnknown          = "unknown"
)

// Config configures the metrics registry labels.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	remindersGenerated *prometheus.CounterVec
	reminderFallbacks  *prometheus.CounterVec
	reminderDispatches *prometheus.CounterVec
	aiDuration         prometheus.Histogram
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
	jobErrors          *prometheus.CounterVec
	jobProcessed       *prometheus.CounterVec
}

// New registers the domain instruments on registerer.
func New(cfg Config, registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	m := &Metrics{
		remindersGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_reminders_generated_total",
			Help:        "Reminder drafts produced, by source.",
			ConstLabels: labels,
		}, []string{"source"}),
		reminderFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_reminder_fallbacks_total",
			Help:        "AI reminder attempts that fell back to the template.",
			ConstLabels: labels,
		}, []string{"reason"}),
		reminderDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_reminder_dispatches_total",
			Help:        "Reminder dispatches handed to a messaging provider.",
			ConstLabels: labels,
		}, []string{"provider", "outcome"}),
		aiDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "invoicedesk_ai_request_duration_seconds",
			Help:        "Latency of outbound AI text generation requests.",
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
			ConstLabels: labels,
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_scheduler_job_runs_total",
			Help:        "Scheduler job runs by name.",
			ConstLabels: labels,
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "invoicedesk_scheduler_job_duration_seconds",
			Help:        "Scheduler job latency.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			ConstLabels: labels,
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_scheduler_job_errors_total",
			Help:        "Scheduler job errors by low-cardinality reason.",
			ConstLabels: labels,
		}, []string{"job", "reason"}),
		jobProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicedesk_scheduler_items_processed_total",
			Help:        "Items handled by scheduler jobs.",
			ConstLabels: labels,
		}, []string{"job"}),
	}

	var err error
	m.remindersGenerated, err = registerCounterVec(registerer, m.remindersGenerated)
	if err != nil {
		return nil, err
	}
	m.reminderFallbacks, err = registerCounterVec(registerer, m.reminderFallbacks)
	if err != nil {
		return nil, err
	}
	m.reminderDispatches, err = registerCounterVec(registerer, m.reminderDispatches)
	if err != nil {
		return nil, err
	}
	m.jobRuns, err = registerCounterVec(registerer, m.jobRuns)
	if err != nil {
		return nil, err
	}
	m.jobErrors, err = registerCounterVec(registerer, m.jobErrors)
	if err != nil {
		return nil, err
	}
	m.jobProcessed, err = registerCounterVec(registerer, m.jobProcessed)
	if err != nil {
		return nil, err
	}
	if err := registerer.Register(m.aiDuration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.aiDuration = already.ExistingCollector.(prometheus.Histogram)
	}
	if err := registerer.Register(m.jobDuration); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		m.jobDuration = already.ExistingCollector.(*prometheus.HistogramVec)
	}

	return m, nil
}

// RecordReminder counts a generated reminder draft.
func (m *Metrics) RecordReminder(_ context.Context, source string) {
	if m == nil {
		return
	}
	m.remindersGenerated.WithLabelValues(normalize(source)).Inc()
}

// RecordFallback counts an AI draft that was replaced by the template.
func (m *Metrics) RecordFallback(_ context.Context, reason string) {
	if m == nil {
		return
	}
	m.reminderFallbacks.WithLabelValues(normalize(reason)).Inc()
}

// RecordDispatch counts a reminder handed to a provider.
func (m *Metrics) RecordDispatch(_ context.Context, provider string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.reminderDispatches.WithLabelValues(normalize(provider), outcome).Inc()
}

func (m *Metrics) ObserveAIRequest(d time.Duration) {
	if m == nil {
		return
	}
	m.aiDuration.Observe(d.Seconds())
}

func (m *Metrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(normalize(job)).Inc()
}

func (m *Metrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalize(job)).Observe(d.Seconds())
}

func (m *Metrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(normalize(job), ClassifyJobReason(err)).Inc()
}

func (m *Metrics) AddJobProcessed(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.jobProcessed.WithLabelValues(normalize(job)).Add(float64(count))
}

// ClassifyJobReason maps an error to a bounded label value.
func ClassifyJobReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return JobReasonDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return JobReasonCanceled
	default:
		return JobReasonUnknown
	}
}

func registerCounterVec(registerer prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "invoicedesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
