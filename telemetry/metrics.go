// Package telemetry registers the dashboard's prometheus collectors.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DashboardRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "churn_dashboard_renders_total",
		Help: "Total number of dashboard renders by mode.",
	}, []string{"mode"})
	DatasetLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "churn_dashboard_dataset_load_errors_total",
		Help: "Total number of failed dataset loads.",
	})
	DatasetLoadSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "churn_dashboard_dataset_load_seconds",
		Help:    "Duration of a dataset load and parse.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5},
	})
	StepPlaceholders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "churn_dashboard_step_placeholders_total",
		Help: "Total number of visualization steps skipped for a missing attribute.",
	}, []string{"step"})
	ChartRenderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "churn_dashboard_chart_render_errors_total",
		Help: "Total number of charts that could not be drawn.",
	}, []string{"step"})
	HistoryViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "churn_dashboard_history_views_total",
		Help: "Total number of history page views.",
	})
	HistoryAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "churn_dashboard_history_appends_total",
		Help: "Total number of prediction records appended to session history.",
	})
	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "churn_dashboard_live_history_clients",
		Help: "Number of open live history websocket connections.",
	})
)
