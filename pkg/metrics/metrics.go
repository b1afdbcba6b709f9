// Package metrics holds domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ThreadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dischan_threads_created_total",
		Help: "Threads created",
	})

	RepliesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dischan_replies_appended_total",
		Help: "Replies appended, labelled by whether the reply bumped the thread",
	}, []string{"bumped"})

	ThreadsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dischan_threads_archived_total",
		Help: "Threads archived by capacity maintenance",
	})

	ThreadsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dischan_threads_purged_total",
		Help: "Threads permanently purged",
	})

	PurgeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dischan_purge_failures_total",
		Help: "Purge attempts that failed part way",
	})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dischan_payment_verifications_total",
		Help: "Payment verifications by result",
	}, []string{"result"})

	AdsActivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dischan_ads_activated_total",
		Help: "Ads activated after payment",
	})

	MaintenanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dischan_maintenance_duration_seconds",
		Help:    "Duration of capacity maintenance passes",
		Buckets: prometheus.DefBuckets,
	})
)

var ScheduledJobs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dischan_scheduled_jobs_total",
	Help: "Scheduled job runs by job and result",
}, []string{"job", "result"})
