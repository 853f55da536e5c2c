package formflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "premise_formflow_fetches_issued_total",
		Help: "Location option fetches issued to the backend collaborator.",
	})
	staleDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "premise_formflow_stale_responses_discarded_total",
		Help: "Fetch responses discarded by the stale-response guard.",
	})
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "premise_formflow_submissions_total",
		Help: "Bulk submissions by outcome.",
	}, []string{"outcome"})
)
