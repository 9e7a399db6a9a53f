package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics groups all Prometheus instruments of one run.
// The job is short-lived, so instruments are pushed to a Pushgateway at the
// end of the run instead of being scraped.
type Metrics struct {
	reg prometheus.Gatherer

	ItemsEnqueued   prometheus.Counter
	ItemsFailed     prometheus.Counter
	ItemsDuplicate  prometheus.Counter
	InsertLatency   prometheus.Histogram
	QueueDepth      prometheus.Gauge
	ListPending     prometheus.Gauge
	Notifications   *prometheus.CounterVec
	RunOutcome      *prometheus.GaugeVec
	RunDuration     prometheus.Gauge
	LastRunFinished prometheus.Gauge
}

// New registers all instruments with reg and returns the populated Metrics.
// A custom registry keeps tests isolated and avoids global state.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reg: reg,

		ItemsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sender_queue_items_enqueued_total",
			Help: "Queue items inserted and committed during the run.",
		}),
		ItemsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sender_queue_items_failed_total",
			Help: "List entries that could not be enqueued and stay in the list file.",
		}),
		ItemsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sender_queue_items_duplicate_total",
			Help: "List entries dropped because the queue already held them.",
		}),
		InsertLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sender_queue_insert_seconds",
			Help:    "Time from reading a list entry to committing its queue row.",
			Buckets: prometheus.DefBuckets,
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sender_queue_depth",
			Help: "Queue rows for this sender seen by the depth check.",
		}),
		ListPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sender_queue_list_pending",
			Help: "Lines left in the list file at the end of the run.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sender_queue_notifications_total",
			Help: "Empty-backlog notifications by delivery result.",
		}, []string{"result"}),
		RunOutcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sender_queue_run_outcome",
			Help: "Set to 1 for the outcome of the last run.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sender_queue_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastRunFinished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sender_queue_last_run_finished_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	reg.MustRegister(
		m.ItemsEnqueued,
		m.ItemsFailed,
		m.ItemsDuplicate,
		m.InsertLatency,
		m.QueueDepth,
		m.ListPending,
		m.Notifications,
		m.RunOutcome,
		m.RunDuration,
		m.LastRunFinished,
	)

	return m
}

// FeederHooks returns the callbacks expected by worker.MetricHooks.
// Keeps the prometheus calls out of the feeder.
func (m *Metrics) FeederHooks() (
	onEnqueued func(latency time.Duration),
	onFailed func(),
	onDuplicate func(),
) {
	onEnqueued = func(latency time.Duration) {
		m.ItemsEnqueued.Inc()
		m.InsertLatency.Observe(latency.Seconds())
	}
	onFailed = func() { m.ItemsFailed.Inc() }
	onDuplicate = func() { m.ItemsDuplicate.Inc() }
	return
}

// NotificationResult counts one notification attempt.
func (m *Metrics) NotificationResult(err error) {
	if err != nil {
		m.Notifications.WithLabelValues("failed").Inc()
		return
	}
	m.Notifications.WithLabelValues("sent").Inc()
}

// RunFinished records the run outcome and timing.
func (m *Metrics) RunFinished(outcome string, elapsed time.Duration, now time.Time) {
	m.RunOutcome.Reset()
	m.RunOutcome.WithLabelValues(outcome).Set(1)
	m.RunDuration.Set(elapsed.Seconds())
	m.LastRunFinished.Set(float64(now.Unix()))
}

// Push sends every registered instrument to the Pushgateway at url, replacing
// the previous push of the same job and grouping labels.
func (m *Metrics) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	p := push.New(url, job).Gatherer(m.reg)
	for k, v := range grouping {
		p = p.Grouping(k, v)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
