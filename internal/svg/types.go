// Package svg renders the dashboard charts as inline SVG so pages stay
// dependency-free on the client.
package svg

// Series is one named, colored value set shared by the bar renderers.
// Values must align with the label axis of the chart it is passed to.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
}

// BarOpts customises the grouped and stacked bar renderers.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	HideLegend  bool
}

// DonutOpts customises the donut chart renderer.
type DonutOpts struct {
	Title       string
	Description string
	CenterLabel string
	AxisColor   string
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)

var seriesPalette = []string{"#2563eb", "#f97316", "#16a34a", "#9333ea", "#dc2626", "#0891b2", "#ca8a04", "#db2777"}

// paletteColor picks a fallback color for a series with no explicit one.
func paletteColor(i int) string {
	return seriesPalette[i%len(seriesPalette)]
}
