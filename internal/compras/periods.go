package compras

import (
	"fmt"
	"sort"
	"time"
)

// Period selects the reporting window applied before aggregation.
type Period string

const (
	// PeriodNatural keeps rows whose date falls in the calendar year.
	PeriodNatural Period = "natural"
	// PeriodFiscal keeps rows inside Nov 1 (Y-1) .. Oct 31 (Y).
	PeriodFiscal Period = "fiscal"
)

var spanishMonths = [...]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}

// ParsePeriod validates a period selector coming from a query string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodNatural, "":
		return PeriodNatural, nil
	case PeriodFiscal:
		return PeriodFiscal, nil
	}
	return "", fmt.Errorf("compras: unknown period %q", s)
}

// Title returns the display name used for cards and chart captions,
// e.g. "2025" or "Fiscal 2025".
func (p Period) Title(year int) string {
	if p == PeriodFiscal {
		return fmt.Sprintf("Fiscal %d", year)
	}
	return fmt.Sprintf("%d", year)
}

// FiscalWindow returns the inclusive fiscal-year bounds for the given
// year: Nov 1 of year-1 through Oct 31 of year.
func FiscalWindow(year int) (time.Time, time.Time) {
	start := time.Date(year-1, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.October, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// InWindow reports whether a record date belongs to the selected period.
func InWindow(date time.Time, period Period, year int) bool {
	if period == PeriodFiscal {
		start, end := FiscalWindow(year)
		return !date.Before(start) && !date.After(end)
	}
	return date.Year() == year
}

// FilterPeriod returns the subset of records inside the selected window.
// Input order is preserved.
func FilterPeriod(records []PurchaseRecord, period Period, year int) []PurchaseRecord {
	out := make([]PurchaseRecord, 0, len(records))
	for _, rec := range records {
		if InWindow(rec.PeriodDate, period, year) {
			out = append(out, rec)
		}
	}
	return out
}

// MonthStart truncates a date to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthLabel formats a date as a localized "Mes Año" label, e.g.
// "Enero 2025". The label is display-only; chronological ordering must
// always use the underlying date.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", spanishMonths[t.Month()], t.Year())
}

// YearsAvailable lists the distinct calendar years present in the
// records, ascending. It drives the year selector on every view.
func YearsAvailable(records []PurchaseRecord) []int {
	seen := make(map[int]struct{})
	for _, rec := range records {
		seen[rec.PeriodDate.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
