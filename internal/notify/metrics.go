package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_enqueued_total",
		Help: "Notification jobs successfully enqueued.",
	})
	enqueueFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_enqueue_failed_total",
		Help: "Notification jobs that could not be enqueued.",
	})
	sentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notification emails delivered to the SMTP relay.",
	})
	sendFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_send_failed_total",
		Help: "Notification emails dropped after exhausting retries.",
	})
)
