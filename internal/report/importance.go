// Package report renders training diagnostics.
package report

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/sklearn/pipeline"
)

// DefaultTop is the number of features drawn by ImportanceChart.
const DefaultTop = 15

// Top returns the n most important features in descending order. Ties
// keep their original order.
func Top(imp []pipeline.Importance, n int) []pipeline.Importance {
	sorted := make([]pipeline.Importance, len(imp))
	copy(sorted, imp)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// ImportanceChart writes a horizontal bar chart of the top features to
// path. The image format follows the file extension (.png, .svg, .pdf).
func ImportanceChart(imp []pipeline.Importance, path string, top int) error {
	if len(imp) == 0 {
		return errors.NewValueError("ImportanceChart", "no feature importances")
	}
	if top <= 0 {
		top = DefaultTop
	}
	selected := Top(imp, top)

	// 上から重要度順に並ぶよう、下から積む
	values := make(plotter.Values, len(selected))
	names := make([]string, len(selected))
	for i, f := range selected {
		k := len(selected) - 1 - i
		values[k] = f.Value
		names[k] = f.Name
	}

	p := plot.New()
	p.Title.Text = "Feature importance"
	p.X.Label.Text = "Mean decrease in impurity"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, "bar chart")
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)

	height := vg.Length(len(selected))*vg.Points(18) + 2*vg.Inch
	if err := p.Save(8*vg.Inch, height, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}
