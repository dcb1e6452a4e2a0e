package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []Series{
		{Label: "Matriz", Color: "#0000FF", Values: []float64{500, 600}},
		{Label: "Norte", Color: "#00FFFF", Values: []float64{300, 320}},
	}, []string{"Enero 2025", "Febrero 2025"}, BarOpts{
		Title:       "Compra mensual por sucursal",
		Description: "Comparativo mensual",
	})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if !strings.Contains(output, "<rect") {
		t.Fatalf("expected rect bars in svg")
	}
	if !strings.Contains(output, "Matriz") {
		t.Fatalf("expected legend label")
	}
	if !strings.Contains(output, "#0000FF") {
		t.Fatalf("expected series color to pass through")
	}
}

func TestBarsLengthMismatch(t *testing.T) {
	_, err := Bars(420, 220, []Series{
		{Label: "Matriz", Values: []float64{1}},
	}, []string{"Enero 2025", "Febrero 2025"}, BarOpts{})
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestStackedBarsProducesSVG(t *testing.T) {
	html, err := StackedBars(420, 220, []Series{
		{Label: "Refacciones", Color: "#FF0000", Values: []float64{100, 50}},
		{Label: "Servicio", Color: "#00FF00", Values: []float64{40, 90}},
	}, []string{"Enero 2025", "Febrero 2025"}, BarOpts{
		Title: "Compra por division",
	})
	if err != nil {
		t.Fatalf("stacked renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<rect") < 4 {
		t.Fatalf("expected one rect per segment plus legend, got %s", output)
	}
}

func TestStackedBarsSkipsNegativeSegments(t *testing.T) {
	html, err := StackedBars(420, 220, []Series{
		{Label: "A", Values: []float64{-5}},
		{Label: "B", Values: []float64{10}},
	}, []string{"Enero 2025"}, BarOpts{HideLegend: true})
	if err != nil {
		t.Fatalf("stacked renderer error: %v", err)
	}
	if strings.Count(string(html), "<rect") != 1 {
		t.Fatalf("negative segment must be skipped: %s", html)
	}
}

func TestDonutProducesSVG(t *testing.T) {
	html, err := Donut(240, []Slice{
		{Label: "Vencido", Color: "#EF4444", Value: 25},
		{Label: "0-30 dias", Color: "#F97316", Value: 75},
	}, DonutOpts{Title: "Distribucion de deuda", CenterLabel: "$100.00"})
	if err != nil {
		t.Fatalf("donut renderer error: %v", err)
	}
	output := string(html)
	if !strings.Contains(output, "<path") {
		t.Fatalf("expected path segments in donut")
	}
	if !strings.Contains(output, "$100.00") {
		t.Fatalf("expected center label")
	}
}

func TestDonutSingleSliceFullRing(t *testing.T) {
	html, err := Donut(240, []Slice{{Label: "Vencido", Value: 10}}, DonutOpts{})
	if err != nil {
		t.Fatalf("donut renderer error: %v", err)
	}
	if !strings.Contains(string(html), "<circle") {
		t.Fatalf("single slice should render a full ring")
	}
}

func TestDonutRejectsEmpty(t *testing.T) {
	if _, err := Donut(240, []Slice{{Label: "x", Value: 0}}, DonutOpts{}); err == nil {
		t.Fatal("expected error for all-zero slices")
	}
}
