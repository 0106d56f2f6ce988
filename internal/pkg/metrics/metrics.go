// Package metrics exposes the bridge's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for MessagesReceived.
const (
	ResultApplied      = "applied"
	ResultAvailability = "availability"
	ResultDropped      = "dropped"
	ResultForeign      = "foreign"
	ResultIgnored      = "ignored"
)

var (
	MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noisehass",
		Name:      "messages_received_total",
		Help:      "Inbound bus messages for this entity's namespace, by routing outcome.",
	}, []string{"result"})

	CommandsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noisehass",
		Name:      "commands_published_total",
		Help:      "Outbound command messages, by command name.",
	}, []string{"command"})

	StateNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "noisehass",
		Name:      "state_notifications_total",
		Help:      "State-change notifications emitted after merges and availability flips.",
	})

	SnapshotsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "noisehass",
		Name:      "snapshots_published_total",
		Help:      "Entity snapshots written to registered publishers, by publisher.",
	}, []string{"publisher"})
)
