// Package analytics holds the model evaluation figures shown in Analytics
// mode. They come from an offline evaluation and are never recomputed from
// the loaded dataset.
package analytics

import "fmt"

// Accuracy is stored as a percentage, the per-class scores as fractions.
const (
	Accuracy = 82.43

	PrecisionNo = 0.87
	RecallNo    = 0.87
	F1No        = 0.87

	PrecisionYes = 0.74
	RecallYes    = 0.73
	F1Yes        = 0.73
)

// KPI is one labelled value of the metrics panel.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel splits the KPIs into the two columns the page shows.
type Panel struct {
	Left  []KPI `json:"left"`
	Right []KPI `json:"right"`
}

func score(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// KPIs returns the metrics panel. Left holds accuracy and the "No" class,
// right holds the "Yes" class.
func KPIs() Panel {
	return Panel{
		Left: []KPI{
			{Label: "Accuracy", Value: fmt.Sprintf("%.2f%%", Accuracy)},
			{Label: "Precision (No)", Value: score(PrecisionNo)},
			{Label: "Recall (No)", Value: score(RecallNo)},
			{Label: "F1-Score (No)", Value: score(F1No)},
		},
		Right: []KPI{
			{Label: "Precision (Yes)", Value: score(PrecisionYes)},
			{Label: "Recall (Yes)", Value: score(RecallYes)},
			{Label: "F1-Score (Yes)", Value: score(F1Yes)},
		},
	}
}

// All flattens the panel in display order.
func (p Panel) All() []KPI {
	out := make([]KPI, 0, len(p.Left)+len(p.Right))
	out = append(out, p.Left...)
	return append(out, p.Right...)
}

// Matrix is a confusion matrix. Rows are actual classes, columns predicted.
type Matrix struct {
	Rows  []string `json:"rows"`
	Cols  []string `json:"cols"`
	Cells [][]int  `json:"cells"`
}

// ConfusionMatrix returns a fresh copy of the evaluation's confusion matrix.
func ConfusionMatrix() Matrix {
	return Matrix{
		Rows:  []string{"No", "Yes"},
		Cols:  []string{"Predicted No", "Predicted Yes"},
		Cells: [][]int{{645, 95}, {100, 270}},
	}
}

// Total is the number of evaluated samples.
func (m Matrix) Total() int {
	n := 0
	for _, r := range m.Cells {
		for _, v := range r {
			n += v
		}
	}
	return n
}
