package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Exporter publishes widget values as gauges, refreshed on an interval
type Exporter struct {
	runner  *Runner
	widgets []Widget
	logger  *logrus.Logger

	values      *prometheus.GaugeVec
	failures    *prometheus.CounterVec
	lastRefresh prometheus.Gauge
}

func NewExporter(runner *Runner, widgets []Widget, logger *logrus.Logger, reg prometheus.Registerer) (*Exporter, error) {
	e := &Exporter{
		runner:  runner,
		widgets: widgets,
		logger:  logger,
		values: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "risksense_dashboard_value",
				Help: "Value of a dashboard widget bucket, by widget and label.",
			},
			[]string{"widget", "label"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "risksense_dashboard_refresh_errors_total",
				Help: "Number of failed widget refreshes, by widget.",
			},
			[]string{"widget"},
		),
		lastRefresh: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "risksense_dashboard_last_refresh_timestamp_seconds",
				Help: "Unix time of the last completed refresh.",
			},
		),
	}

	for _, c := range []prometheus.Collector{e.values, e.failures, e.lastRefresh} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "unable to register dashboard metrics")
		}
	}
	return e, nil
}

// Refresh evaluates every widget. A failed widget keeps its previous values.
func (e *Exporter) Refresh() {
	for _, res := range e.runner.RunAll(e.widgets) {
		if res.Err != nil {
			e.failures.WithLabelValues(res.Widget.Name).Inc()
			continue
		}

		e.values.DeletePartialMatch(prometheus.Labels{"widget": res.Widget.Name})
		for _, p := range res.Points {
			e.values.WithLabelValues(res.Widget.Name, p.Label).Set(p.Value)
		}
	}
	e.lastRefresh.SetToCurrentTime()
}

// Run refreshes immediately and then on every tick until ctx is done
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		e.Refresh()
		e.logger.Debugf("Refreshed %d widgets, next refresh in %v", len(e.widgets), interval)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
