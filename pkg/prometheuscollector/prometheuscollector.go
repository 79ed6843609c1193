// Package prometheuscollector exposes the handler's metrics for Prometheus.
//
//	handler, err := handler.NewHandler(…)
//	collector := prometheuscollector.New(handler.Metrics)
//	prometheus.MustRegister(collector)
package prometheuscollector

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

var (
	requestsTotalDesc = prometheus.NewDesc(
		"tus_requests_total",
		"Total number of requests served per method.",
		[]string{"method"}, nil)
	errorsTotalDesc = prometheus.NewDesc(
		"tus_errors_total",
		"Total number of errors per status.",
		[]string{"status", "code"}, nil)
	bytesReceivedDesc = prometheus.NewDesc(
		"tus_bytes_received",
		"Number of bytes received for upload sessions.",
		nil, nil)
	sessionsCreatedDesc = prometheus.NewDesc(
		"tus_sessions_created",
		"Number of created upload sessions.",
		nil, nil)
	sessionsFinalizedDesc = prometheus.NewDesc(
		"tus_sessions_finalized",
		"Number of upload sessions turned into content.",
		nil, nil)
	sessionsExpiredDesc = prometheus.NewDesc(
		"tus_sessions_expired",
		"Number of upload sessions removed by the sweeper.",
		nil, nil)
)

type Collector struct {
	metrics handler.Metrics
}

// New creates a new collector which reads from the provided Metrics struct.
func New(metrics handler.Metrics) Collector {
	return Collector{
		metrics: metrics,
	}
}

func (Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- requestsTotalDesc
	descs <- errorsTotalDesc
	descs <- bytesReceivedDesc
	descs <- sessionsCreatedDesc
	descs <- sessionsFinalizedDesc
	descs <- sessionsExpiredDesc
}

func (c Collector) Collect(metrics chan<- prometheus.Metric) {
	for method, valuePtr := range c.metrics.RequestsTotal {
		metrics <- prometheus.MustNewConstMetric(
			requestsTotalDesc,
			prometheus.CounterValue,
			float64(atomic.LoadUint64(valuePtr)),
			method,
		)
	}

	for httpError, valuePtr := range c.metrics.ErrorsTotal.Load() {
		metrics <- prometheus.MustNewConstMetric(
			errorsTotalDesc,
			prometheus.CounterValue,
			float64(atomic.LoadUint64(valuePtr)),
			strconv.Itoa(httpError.StatusCode),
			httpError.ErrorCode,
		)
	}

	for desc, valuePtr := range map[*prometheus.Desc]*uint64{
		bytesReceivedDesc:     c.metrics.BytesReceived,
		sessionsCreatedDesc:   c.metrics.SessionsCreated,
		sessionsFinalizedDesc: c.metrics.SessionsFinalized,
		sessionsExpiredDesc:   c.metrics.SessionsExpired,
	} {
		metrics <- prometheus.MustNewConstMetric(
			desc,
			prometheus.CounterValue,
			float64(atomic.LoadUint64(valuePtr)),
		)
	}
}
