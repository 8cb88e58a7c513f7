package pipeline

import (
	"fmt"
	"strings"

	"churn-dashboard/dataset"
)

// ChartKind tells the renderer how to draw a step's aggregate.
type ChartKind string

const (
	HorizontalBar ChartKind = "horizontal_bar"
	Histogram     ChartKind = "histogram"
	Pie           ChartKind = "pie"
	VerticalBar   ChartKind = "vertical_bar"
	StackedBar    ChartKind = "stacked_bar"
	GroupedBars   ChartKind = "grouped_bars"
	PointPlot     ChartKind = "point_plot"
)

// Step is one row of the visualization table: what it needs, how it
// aggregates, and how it is drawn.
type Step struct {
	Key       string
	Title     string
	Requires  []dataset.Field
	Chart     ChartKind
	aggregate func(*dataset.Dataset) any
}

// Steps is the fixed, ordered list the EDA dashboard presents.
var Steps = []Step{
	{
		Key:       "contract_types",
		Title:     "Types of Contracts",
		Requires:  []dataset.Field{dataset.Contract},
		Chart:     HorizontalBar,
		aggregate: func(ds *dataset.Dataset) any { return valueCounts(ds, dataset.Contract) },
	},
	{
		Key:       "monthly_charges",
		Title:     "Distribution of Monthly Charges",
		Requires:  []dataset.Field{dataset.MonthlyCharges},
		Chart:     Histogram,
		aggregate: func(ds *dataset.Dataset) any { return distribution(ds, dataset.MonthlyCharges) },
	},
	{
		Key:       "total_charges",
		Title:     "Distribution of Total Charges",
		Requires:  []dataset.Field{dataset.TotalCharges},
		Chart:     Histogram,
		aggregate: func(ds *dataset.Dataset) any { return distribution(ds, dataset.TotalCharges) },
	},
	{
		Key:       "senior_citizens",
		Title:     "Distribution of Senior Citizens",
		Requires:  []dataset.Field{dataset.SeniorCitizen},
		Chart:     Pie,
		aggregate: func(ds *dataset.Dataset) any { return seniorSplit(ds) },
	},
	{
		Key:       "gender",
		Title:     "Distribution of Gender",
		Requires:  []dataset.Field{dataset.Gender},
		Chart:     VerticalBar,
		aggregate: func(ds *dataset.Dataset) any { return valueCounts(ds, dataset.Gender) },
	},
	{
		Key:       "churn_by_payment_method",
		Title:     "Churn Rate by Payment Method",
		Requires:  []dataset.Field{dataset.Churn, dataset.PaymentMethod},
		Chart:     StackedBar,
		aggregate: func(ds *dataset.Dataset) any { return churnByPaymentMethod(ds) },
	},
	{
		Key:       "partner_tenure_charges_churn",
		Title:     "Multivariate Analysis: Partner, Tenure, Monthly Charges and Churn",
		Requires:  []dataset.Field{dataset.Partner, dataset.Churn, dataset.TenureMonths, dataset.MonthlyCharges},
		Chart:     GroupedBars,
		aggregate: func(ds *dataset.Dataset) any { return partnerChurnMeans(ds) },
	},
	{
		Key:       "mean_total_charges_by_tenure",
		Title:     "Mean Total Charges by Tenure",
		Requires:  []dataset.Field{dataset.TenureMonths, dataset.TotalCharges},
		Chart:     PointPlot,
		aggregate: func(ds *dataset.Dataset) any { return meanTotalByTenure(ds) },
	},
}

// Output is the result of one step for one dataset. Exactly one of Data and
// Placeholder is set.
type Output struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Chart       ChartKind       `json:"chart"`
	Missing     []dataset.Field `json:"missing,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Data        any             `json:"data,omitempty"`
}

func (o Output) Available() bool {
	return o.Placeholder == ""
}

// Apply runs a single step. A missing attribute only affects this step.
func (s Step) Apply(ds *dataset.Dataset) Output {
	out := Output{Key: s.Key, Title: s.Title, Chart: s.Chart}
	if missing := ds.Capabilities.Missing(s.Requires...); len(missing) > 0 {
		out.Missing = missing
		out.Placeholder = missingMessage(missing)
		return out
	}
	out.Data = s.aggregate(ds)
	return out
}

// Run applies every step in table order. Steps share no intermediate state,
// so running twice on the same dataset yields identical output.
func Run(ds *dataset.Dataset) []Output {
	outputs := make([]Output, 0, len(Steps))
	for _, s := range Steps {
		outputs = append(outputs, s.Apply(ds))
	}
	return outputs
}

func missingMessage(missing []dataset.Field) string {
	quoted := make([]string, len(missing))
	for i, f := range missing {
		quoted[i] = fmt.Sprintf("'%s'", f)
	}
	return fmt.Sprintf("No %s column in the dataset.", strings.Join(quoted, " or "))
}
