package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records scheduler and notification pipeline counters. All methods
// are safe on a nil receiver or an unregistered instance, so tests and
// trimmed-down builds can pass nil freely.
type Metrics struct {
	jobDuration   *prometheus.HistogramVec
	jobRuns       *prometheus.CounterVec
	emailsSent    *prometheus.CounterVec
	alertsFired   prometheus.Counter
	cacheSize     prometheus.Gauge
	cacheFallback *prometheus.CounterVec
}

// New registers the collectors on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of scheduled jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Scheduled job executions by outcome.",
	}, []string{"job", "status"})
	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_total",
		Help: "Email deliveries by kind and outcome.",
	}, []string{"kind", "status"})
	alertsFired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_alerts_triggered_total",
		Help: "Price alerts that fired and were notified.",
	})
	cacheSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "deals_cache_size",
		Help: "Deals currently held in the cache.",
	})
	cacheFallback := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deals_cache_fallback_total",
		Help: "Deals cache reads served by a fallback tier.",
	}, []string{"tier"})
	reg.MustRegister(jobDuration, jobRuns, emailsSent, alertsFired, cacheSize, cacheFallback)
	return &Metrics{
		jobDuration:   jobDuration,
		jobRuns:       jobRuns,
		emailsSent:    emailsSent,
		alertsFired:   alertsFired,
		cacheSize:     cacheSize,
		cacheFallback: cacheFallback,
	}
}

func (m *Metrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func (m *Metrics) IncJobSuccess(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(normalizeLabel(job), "success").Inc()
}

func (m *Metrics) IncJobFailure(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(normalizeLabel(job), "failure").Inc()
}

func (m *Metrics) IncEmailSent(kind string) {
	if m == nil || m.emailsSent == nil {
		return
	}
	m.emailsSent.WithLabelValues(normalizeLabel(kind), "sent").Inc()
}

func (m *Metrics) IncEmailFailed(kind string) {
	if m == nil || m.emailsSent == nil {
		return
	}
	m.emailsSent.WithLabelValues(normalizeLabel(kind), "failed").Inc()
}

func (m *Metrics) IncAlertTriggered() {
	if m == nil || m.alertsFired == nil {
		return
	}
	m.alertsFired.Inc()
}

func (m *Metrics) SetDealsCacheSize(n int) {
	if m == nil || m.cacheSize == nil {
		return
	}
	m.cacheSize.Set(float64(n))
}

func (m *Metrics) IncCacheFallback(tier string) {
	if m == nil || m.cacheFallback == nil {
		return
	}
	m.cacheFallback.WithLabelValues(normalizeLabel(tier)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
