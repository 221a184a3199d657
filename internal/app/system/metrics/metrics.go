// Package metrics exposes Prometheus instruments for the document store
// gateways: how many live listeners are open and how many snapshots and
// errors they have delivered.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListenersActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "slackclone",
		Subsystem: "docstore",
		Name:      "listeners_active",
		Help:      "Open live listeners by collection.",
	}, []string{"backend", "collection"})

	SnapshotsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slackclone",
		Subsystem: "docstore",
		Name:      "snapshots_delivered_total",
		Help:      "Full snapshots pushed to listeners.",
	}, []string{"backend", "collection"})

	ListenerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "slackclone",
		Subsystem: "docstore",
		Name:      "listener_errors_total",
		Help:      "Transport errors pushed to listeners.",
	}, []string{"backend", "collection"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
