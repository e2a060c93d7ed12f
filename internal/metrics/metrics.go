package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total", Help: "Notification rows persisted by the dispatcher",
	})
	DispatchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_errors_total", Help: "Per-recipient dispatch failures",
	})
	PushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_sent_total", Help: "Web Push deliveries accepted by the relay",
	})
	PushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_failed_total", Help: "Web Push deliveries rejected or errored",
	})
	WSConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients", Help: "Currently bound live connections",
	})
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_job_runs_total", Help: "Completed job invocations",
	}, []string{"job"})
	JobErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_job_errors_total", Help: "Job invocations that returned an error or panicked",
	}, []string{"job"})
	JobSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_job_skips_total", Help: "Ticks skipped because the previous invocation was still running",
	}, []string{"job"})
	SweepRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retention_rows_removed_total", Help: "Rows deleted by the retention sweep",
	})
)
