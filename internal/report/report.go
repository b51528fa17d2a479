// Package report renders trial results: an HTML scatter of realised endpoints
// and a PNG histogram of forward displacements.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/odometry.sim/internal/trialdb"
)

// viridis palette for the visual map, low to high.
var visualMapColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// EndpointScatter renders an HTML scatter chart of trial endpoints in the
// ground plane, colored by heading. X is the lateral axis, the vertical chart
// axis is the forward displacement (-Z).
func EndpointScatter(w io.Writer, title, subtitle string, endpoints []trialdb.StepRecord) error {
	if len(endpoints) == 0 {
		return fmt.Errorf("no endpoints to plot")
	}

	data := make([]opts.ScatterData, 0, len(endpoints))
	maxAbs := 0.0
	maxYaw := 0.0
	for _, e := range endpoints {
		x := e.PosX
		forward := -e.PosZ
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(forward) > maxAbs {
			maxAbs = math.Abs(forward)
		}
		if math.Abs(e.YawRad) > maxYaw {
			maxYaw = math.Abs(e.YawRad)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, forward, e.YawRad}})
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxYaw == 0 {
		maxYaw = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "Lateral (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Forward (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(-maxYaw),
			Max:        float32(maxYaw),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: visualMapColors},
		}),
	)

	scatter.AddSeries("endpoints", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render endpoint scatter: %w", err)
	}
	return nil
}

// ForwardHistogram saves a PNG histogram of realised forward displacements.
func ForwardHistogram(path, title string, displacements []float64, bins int) error {
	if len(displacements) == 0 {
		return fmt.Errorf("no displacements to plot")
	}
	if bins <= 0 {
		bins = 30
	}

	values := make(plotter.Values, len(displacements))
	copy(values, displacements)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Forward displacement (m)"
	p.Y.Label.Text = "Trials"

	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(hist)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}

// FinalSteps filters a run's steps down to the last step of each trial, in
// trial order. Input must be ordered as RunSteps returns it.
func FinalSteps(steps []trialdb.StepRecord) []trialdb.StepRecord {
	var finals []trialdb.StepRecord
	for i, s := range steps {
		last := i == len(steps)-1 || steps[i+1].Trial != s.Trial
		if last {
			finals = append(finals, s)
		}
	}
	return finals
}
