// Package metrics defines the Prometheus collectors for ledger work.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitledger"

// Ledger operation labels.
const (
	OpBalances = "balances"
	OpDebts    = "debts"
	OpActivity = "activity"
	OpReport   = "report"
)

// Metrics holds the collectors. A nil *Metrics records nothing, so callers
// never need to check.
type Metrics struct {
	computeSeconds     *prometheus.HistogramVec
	expensesCreated    prometheus.Counter
	settlementsCreated prometheus.Counter
	membersRemoved     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		computeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_compute_seconds",
			Help:      "Time spent computing ledger views from a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		expensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses recorded.",
		}),
		settlementsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_created_total",
			Help:      "Settlements recorded.",
		}),
		membersRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_removed_total",
			Help:      "Members removed from groups.",
		}),
	}
	reg.MustRegister(m.computeSeconds, m.expensesCreated, m.settlementsCreated, m.membersRemoved)
	return m
}

// ObserveCompute records the time since start for a ledger operation.
func (m *Metrics) ObserveCompute(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.computeSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ExpenseCreated() {
	if m != nil {
		m.expensesCreated.Inc()
	}
}

func (m *Metrics) SettlementCreated() {
	if m != nil {
		m.settlementsCreated.Inc()
	}
}

func (m *Metrics) MemberRemoved() {
	if m != nil {
		m.membersRemoved.Inc()
	}
}
