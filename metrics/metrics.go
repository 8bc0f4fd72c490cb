package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ThreadRepairs counts un-archive mutations issued by the reconciler, by domain
	ThreadRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_thread_repairs_total",
		Help: "Archived threads re-opened by the reconciler",
	}, []string{"domain"})

	// ThreadPrunes counts vanished threads removed from documents, by domain
	ThreadPrunes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_thread_prunes_total",
		Help: "Vanished threads removed from persisted documents",
	}, []string{"domain"})

	// ReconcileErrors counts per-thread failures that were skipped for a tick
	ReconcileErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_reconcile_errors_total",
		Help: "Per-thread reconciliation failures",
	}, []string{"domain"})

	// ReconcileDuration tracks how long a full tick takes
	ReconcileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecessbot_reconcile_tick_duration_seconds",
		Help:    "Reconciliation tick duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"domain"})

	// ReactionEvents counts processed reaction events by kind and outcome
	ReactionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_reaction_events_total",
		Help: "Reaction events processed",
	}, []string{"kind", "outcome"})

	// RoleMutations counts role grants and revocations
	RoleMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_role_mutations_total",
		Help: "Role grants and revocations applied to members",
	}, []string{"action"})

	// Commands counts command invocations by name and outcome
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_commands_total",
		Help: "Commands handled",
	}, []string{"command", "outcome"})

	// CourseLookups counts external course-info lookups by outcome
	CourseLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecessbot_course_lookups_total",
		Help: "Course info lookups",
	}, []string{"outcome"})
)

// ObserveTick records the duration of a reconciliation tick that started at start
func ObserveTick(domain string, start time.Time) {
	ReconcileDuration.WithLabelValues(domain).Observe(time.Since(start).Seconds())
}
