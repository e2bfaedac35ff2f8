package complaint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_submitted_total",
		Help: "Complaints successfully registered, by category.",
	}, []string{"category"})

	resolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_resolved_total",
		Help: "Complaints transitioned to Resolved, by category.",
	}, []string{"category"})
)
