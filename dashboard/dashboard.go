// Package dashboard assembles what the Dashboard view shows for one render:
// the EDA step list or the fixed model metrics.
package dashboard

import (
	"context"
	"errors"
	"html/template"
	"strings"
	"time"

	"churn-dashboard/analytics"
	"churn-dashboard/charts"
	"churn-dashboard/dataset"
	"churn-dashboard/pipeline"
	"churn-dashboard/telemetry"

	"github.com/rs/zerolog/log"
)

type Mode string

const (
	EDA       Mode = "eda"
	Analytics Mode = "analytics"
)

// Modes is the sidebar order.
var Modes = []Mode{EDA, Analytics}

// ParseMode maps the mode query parameter onto a Mode. Anything it does not
// recognise selects EDA.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case Analytics:
		return Analytics
	default:
		return EDA
	}
}

func (m Mode) Label() string {
	if m == Analytics {
		return "Analytics Dashboard"
	}
	return "EDA Dashboard"
}

// Chart is one EDA step as the page presents it. Placeholder is set when the
// dataset lacks a required attribute, Error when the aggregate could not be
// drawn.
type Chart struct {
	Key         string             `json:"key"`
	Title       string             `json:"title"`
	Kind        pipeline.ChartKind `json:"chart"`
	Placeholder string             `json:"placeholder,omitempty"`
	Error       string             `json:"error,omitempty"`
	Data        any                `json:"data,omitempty"`
	Image       template.URL       `json:"-"`
}

type MetricsView struct {
	KPIs           analytics.Panel  `json:"kpis"`
	Confusion      analytics.Matrix `json:"confusionMatrix"`
	ConfusionImage template.URL     `json:"-"`
	ConfusionError string           `json:"confusionError,omitempty"`
}

// View is the whole result of one render. Exactly one of Charts and Metrics
// is populated, matching Mode.
type View struct {
	Mode    Mode         `json:"mode"`
	Source  string       `json:"source"`
	Rows    int          `json:"rows"`
	Columns []string     `json:"columns"`
	Charts  []Chart      `json:"charts,omitempty"`
	Metrics *MetricsView `json:"metrics,omitempty"`
}

type Service struct {
	loader *dataset.Loader
}

func NewService(loader *dataset.Loader) *Service {
	return &Service{loader: loader}
}

func (s *Service) Source() string {
	return s.loader.Source()
}

// Render loads the dataset and runs the branch for mode. A load failure is
// returned as *dataset.LoadError and nothing else is computed. With images
// false the charts are skipped and only aggregates are returned.
func (s *Service) Render(ctx context.Context, mode Mode, images bool) (*View, error) {
	start := time.Now()
	ds, err := s.loader.Load(ctx)
	telemetry.DatasetLoadSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.DatasetLoadErrors.Inc()
		var le *dataset.LoadError
		if errors.As(err, &le) {
			log.Error().Str("source", le.Source).Err(le.Err).Msg("dataset load failed")
		}
		return nil, err
	}

	view := &View{
		Mode:    mode,
		Source:  ds.Source,
		Rows:    ds.Len(),
		Columns: ds.Columns,
	}
	switch mode {
	case Analytics:
		view.Metrics = metrics(images)
	default:
		view.Charts = steps(ds, images)
	}
	telemetry.DashboardRenders.WithLabelValues(string(mode)).Inc()
	log.Debug().
		Str("mode", string(mode)).
		Int("rows", view.Rows).
		Str("capabilities", ds.Capabilities.String()).
		Msg("dashboard rendered")
	return view, nil
}

func steps(ds *dataset.Dataset, images bool) []Chart {
	outputs := pipeline.Run(ds)
	out := make([]Chart, 0, len(outputs))
	for _, o := range outputs {
		c := Chart{Key: o.Key, Title: o.Title, Kind: o.Chart}
		if !o.Available() {
			c.Placeholder = o.Placeholder
			telemetry.StepPlaceholders.WithLabelValues(o.Key).Inc()
			out = append(out, c)
			continue
		}
		c.Data = o.Data
		if images {
			png, err := charts.Render(o)
			if err != nil {
				c.Error = chartError(err)
				telemetry.ChartRenderErrors.WithLabelValues(o.Key).Inc()
				log.Warn().Str("step", o.Key).Err(err).Msg("chart not drawn")
			} else {
				c.Image = charts.DataURI(png)
			}
		}
		out = append(out, c)
	}
	return out
}

func metrics(images bool) *MetricsView {
	m := &MetricsView{
		KPIs:      analytics.KPIs(),
		Confusion: analytics.ConfusionMatrix(),
	}
	if images {
		png, err := charts.Heatmap(m.Confusion.Rows, m.Confusion.Cols, m.Confusion.Cells)
		if err != nil {
			m.ConfusionError = chartError(err)
			telemetry.ChartRenderErrors.WithLabelValues("confusion_matrix").Inc()
			log.Warn().Err(err).Msg("confusion matrix not drawn")
		} else {
			m.ConfusionImage = charts.DataURI(png)
		}
	}
	return m
}

func chartError(err error) string {
	if errors.Is(err, charts.ErrNoData) {
		return "Not enough data to draw this chart."
	}
	return "This chart could not be drawn."
}
