package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle actions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Name:      "emails_total",
			Help:      "Email jobs by status (sent, failed, dropped).",
		},
		[]string{"status"},
	)

	pushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookhub",
			Name:      "push_events_total",
			Help:      "Push events by delivery result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(transitions, emails, pushes)
	})
}

func IncTransition(action, outcome string) {
	transitions.WithLabelValues(action, outcome).Inc()
}

func IncEmail(status string) {
	emails.WithLabelValues(status).Inc()
}

func IncPush(delivered bool) {
	result := "delivered"
	if !delivered {
		result = "dropped"
	}
	pushes.WithLabelValues(result).Inc()
}
