package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Slice is one segment of a donut chart.
type Slice struct {
	Label string
	Color string
	Value float64
}

// Donut renders a ring chart with a hole suited for a center label.
// Slices with non-positive values are skipped. A single slice becomes
// a full ring.
func Donut(size int, slices []Slice, opts DonutOpts) (template.HTML, error) {
	total := 0.0
	kept := make([]Slice, 0, len(slices))
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		kept = append(kept, s)
		total += s.Value
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("svg: at least one positive slice required")
	}
	if size <= 0 {
		size = DefaultHeight
	}
	axisColor := fallback(opts.AxisColor, "#475569")

	center := float64(size) / 2
	outer := center * 0.92
	inner := outer * 0.55

	titleID := makeID(opts.Title, "donut-title")
	descID := makeID(opts.Title, "donut-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", size, size, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Anillo"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Distribucion porcentual"))))

	if len(kept) == 1 {
		color := fallback(kept[0].Color, paletteColor(0))
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" aria-label=\"%s\"></circle>", center, center, (outer+inner)/2, color, outer-inner, template.HTMLEscapeString(kept[0].Label)))
	} else {
		angle := -math.Pi / 2
		for i, s := range kept {
			share := s.Value / total
			next := angle + share*2*math.Pi
			b.WriteString(donutSegment(center, inner, outer, angle, next, fallback(s.Color, paletteColor(i)), s.Label))
			angle = next
		}
	}

	if opts.CenterLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"13\" font-weight=\"bold\" text-anchor=\"middle\">%s</text>", center, center+4, axisColor, template.HTMLEscapeString(opts.CenterLabel)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func donutSegment(center, inner, outer, from, to float64, color, label string) string {
	largeArc := 0
	if to-from > math.Pi {
		largeArc = 1
	}
	x0, y0 := polar(center, outer, from)
	x1, y1 := polar(center, outer, to)
	x2, y2 := polar(center, inner, to)
	x3, y3 := polar(center, inner, from)
	path := fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		x0, y0, outer, outer, largeArc, x1, y1, x2, y2, inner, inner, largeArc, x3, y3)
	return fmt.Sprintf("<path d=\"%s\" fill=\"%s\" aria-label=\"%s\"></path>", path, color, template.HTMLEscapeString(label))
}

func polar(center, radius, angle float64) (float64, float64) {
	return center + radius*math.Cos(angle), center + radius*math.Sin(angle)
}
