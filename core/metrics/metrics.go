package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obschiysbor_event_joins_total",
		Help: "Successful event joins.",
	})

	JoinsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obschiysbor_event_joins_denied_total",
		Help: "Join attempts rejected by the admission checks, by reason.",
	}, []string{"reason"})

	LeavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obschiysbor_event_leaves_total",
		Help: "Successful event leaves.",
	})

	OccurrencesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obschiysbor_recurrence_occurrences_created_total",
		Help: "Child events created by recurrence expansion.",
	})

	LedgerRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obschiysbor_ledger_retries_total",
		Help: "Participation ledger transactions retried after contention.",
	})
)
