package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the web tier's traffic to the sponsorship backend and
// the upload pipeline. Exposed on /metrics via promhttp.
type Metrics struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  prometheus.Histogram
	UploadsAccepted prometheus.Counter
	UploadsRejected prometheus.Counter
	PollTicks       prometheus.Counter
}

// New registers the collectors on the given registerer; pass
// prometheus.DefaultRegisterer in main, a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorweb_backend_requests_total",
			Help: "Requests made to the sponsorship backend, by outcome.",
		}, []string{"outcome"}),
		BackendLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sponsorweb_backend_request_seconds",
			Help:    "Latency of sponsorship backend requests.",
			Buckets: prometheus.DefBuckets,
		}),
		UploadsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sponsorweb_uploads_accepted_total",
			Help: "Files accepted and stored by the upload pipeline.",
		}),
		UploadsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "sponsorweb_uploads_rejected_total",
			Help: "Files rejected by validation or failed to store.",
		}),
		PollTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "sponsorweb_notification_polls_total",
			Help: "Notification badge poll cycles completed.",
		}),
	}
}
