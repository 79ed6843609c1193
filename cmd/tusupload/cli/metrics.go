package cli

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FHNW/plone.restapi/pkg/handler"
	"github.com/FHNW/plone.restapi/pkg/hooks"
	"github.com/FHNW/plone.restapi/pkg/prometheuscollector"
)

var metricsRegistry prometheus.Registerer = prometheus.DefaultRegisterer

var MetricsOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "tus_connections_open",
	Help: "Current number of open connections.",
})

func SetupMetrics(mux *http.ServeMux, handler *handler.Handler) {
	metricsRegistry.MustRegister(MetricsOpenConnections)
	metricsRegistry.MustRegister(hooks.MetricsHookErrorsTotal)
	metricsRegistry.MustRegister(hooks.MetricsHookInvocationsTotal)
	metricsRegistry.MustRegister(prometheuscollector.New(handler.Metrics))

	printStartupLog("Using %s as the metrics path.\n", Flags.MetricsPath)
	mux.Handle(Flags.MetricsPath, promhttp.Handler())
}
