package compras

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucerolu/Dshb-dm/internal/refdata"
)

// MonthlyPoint is one month on a time series. Month is the first of the
// month in UTC and doubles as the sort key for Label.
type MonthlyPoint struct {
	Month  time.Time
	Label  string
	Amount decimal.Decimal
}

// MonthlyComparison extends a MonthlyPoint with the movement against
// the previous month. Delta and PctChange are zero for the first month
// in range, and PctChange is zero when the previous month summed to zero.
type MonthlyComparison struct {
	MonthlyPoint
	Delta     decimal.Decimal
	PctChange decimal.Decimal
}

// Pivot is a two-dimensional grouped-sum table. Row and column keys are
// kept in explicit order because renderers care about chronology, not
// lexicographic order.
type Pivot struct {
	RowKeys []string
	ColKeys []string
	cells   map[string]map[string]decimal.Decimal
}

// NewPivot returns an empty pivot ready for Add calls.
func NewPivot() *Pivot {
	return &Pivot{cells: make(map[string]map[string]decimal.Decimal)}
}

// Add accumulates an amount into a cell, registering new row and
// column keys in first-seen order.
func (p *Pivot) Add(row, col string, amount decimal.Decimal) {
	cols, ok := p.cells[row]
	if !ok {
		cols = make(map[string]decimal.Decimal)
		p.cells[row] = cols
		p.RowKeys = append(p.RowKeys, row)
	}
	if _, ok := cols[col]; !ok {
		found := false
		for _, existing := range p.ColKeys {
			if existing == col {
				found = true
				break
			}
		}
		if !found {
			p.ColKeys = append(p.ColKeys, col)
		}
	}
	cols[col] = cols[col].Add(amount)
}

// Value returns the summed amount for a cell, zero when absent.
func (p *Pivot) Value(row, col string) decimal.Decimal {
	if cols, ok := p.cells[row]; ok {
		return cols[col]
	}
	return decimal.Zero
}

// RowTotal sums one row across all columns.
func (p *Pivot) RowTotal(row string) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range p.cells[row] {
		total = total.Add(amount)
	}
	return total
}

// ColTotal sums one column across all rows.
func (p *Pivot) ColTotal(col string) decimal.Decimal {
	total := decimal.Zero
	for _, cols := range p.cells {
		total = total.Add(cols[col])
	}
	return total
}

// GrandTotal sums every cell.
func (p *Pivot) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for row := range p.cells {
		total = total.Add(p.RowTotal(row))
	}
	return total
}

// Empty reports whether the pivot holds no cells.
func (p *Pivot) Empty() bool {
	return len(p.RowKeys) == 0
}

// SortRows orders the row keys with the provided comparator.
func (p *Pivot) SortRows(less func(a, b string) bool) {
	sort.SliceStable(p.RowKeys, func(i, j int) bool { return less(p.RowKeys[i], p.RowKeys[j]) })
}

// SortRowsByTotalDesc orders rows by their summed amount, largest first.
func (p *Pivot) SortRowsByTotalDesc() {
	p.SortRows(func(a, b string) bool {
		return p.RowTotal(a).GreaterThan(p.RowTotal(b))
	})
}

// Total sums all record amounts.
func Total(records []PurchaseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

// CurrentMonthTotal sums the records dated in the wall-clock month of
// now, regardless of the period filter already applied upstream. Views
// that exclude the current month therefore show zero here.
func CurrentMonthTotal(records []PurchaseRecord, now time.Time) decimal.Decimal {
	current := MonthStart(now)
	total := decimal.Zero
	for _, rec := range records {
		if MonthStart(rec.PeriodDate).Equal(current) {
			total = total.Add(rec.Amount)
		}
	}
	return total
}

// MonthlyTotals groups amounts by month, chronologically. Months with
// no records are simply absent; there is no zero-filling.
func MonthlyTotals(records []PurchaseRecord) []MonthlyPoint {
	sums := make(map[time.Time]decimal.Decimal)
	for _, rec := range records {
		month := MonthStart(rec.PeriodDate)
		sums[month] = sums[month].Add(rec.Amount)
	}
	points := make([]MonthlyPoint, 0, len(sums))
	for month, amount := range sums {
		points = append(points, MonthlyPoint{Month: month, Label: MonthLabel(month), Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}

// MonthOverMonth derives the delta and percentage change per
// consecutive month pair, ordered chronologically.
func MonthOverMonth(points []MonthlyPoint) []MonthlyComparison {
	comparisons := make([]MonthlyComparison, 0, len(points))
	for i, point := range points {
		cmp := MonthlyComparison{MonthlyPoint: point, Delta: decimal.Zero, PctChange: decimal.Zero}
		if i > 0 {
			prev := points[i-1].Amount
			cmp.Delta = point.Amount.Sub(prev)
			if !prev.IsZero() {
				cmp.PctChange = cmp.Delta.Div(prev).Mul(decimal.NewFromInt(100))
			}
		}
		comparisons = append(comparisons, cmp)
	}
	return comparisons
}

// monthOrder returns distinct month labels in chronological order.
func monthOrder(records []PurchaseRecord) []string {
	months := make(map[time.Time]struct{})
	for _, rec := range records {
		months[MonthStart(rec.PeriodDate)] = struct{}{}
	}
	keys := make([]time.Time, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	labels := make([]string, 0, len(keys))
	for _, m := range keys {
		labels = append(labels, MonthLabel(m))
	}
	return labels
}

// OrderCols rewrites the column order, keeping only columns present in
// the pivot.
func (p *Pivot) OrderCols(order []string) {
	present := make(map[string]struct{}, len(p.ColKeys))
	for _, col := range p.ColKeys {
		present[col] = struct{}{}
	}
	cols := make([]string, 0, len(p.ColKeys))
	for _, col := range order {
		if _, ok := present[col]; ok {
			cols = append(cols, col)
		}
	}
	p.ColKeys = cols
}

// MonthlyByDivision pivots division rows against chronological month
// columns. Records whose code does not resolve to a division under the
// active policy are excluded, so the pivot grand total can be lower
// than Total(records).
func MonthlyByDivision(records []PurchaseRecord, cfg *refdata.Config) *Pivot {
	p := NewPivot()
	for _, rec := range records {
		division, ok := cfg.Resolve(rec.AccountCode)
		if !ok {
			continue
		}
		p.Add(division, MonthLabel(MonthStart(rec.PeriodDate)), rec.Amount)
	}
	p.OrderCols(monthOrder(records))
	sort.Strings(p.RowKeys)
	return p
}

// MonthlyByBranch pivots branch rows against chronological month
// columns. Every record participates, mapped or not.
func MonthlyByBranch(records []PurchaseRecord) *Pivot {
	p := NewPivot()
	for _, rec := range records {
		p.Add(rec.Branch, MonthLabel(MonthStart(rec.PeriodDate)), rec.Amount)
	}
	p.OrderCols(monthOrder(records))
	sort.Strings(p.RowKeys)
	return p
}

// BranchByDivision pivots branches against divisions, subject to the
// unmapped-code policy.
func BranchByDivision(records []PurchaseRecord, cfg *refdata.Config) *Pivot {
	p := NewPivot()
	for _, rec := range records {
		division, ok := cfg.Resolve(rec.AccountCode)
		if !ok {
			continue
		}
		p.Add(rec.Branch, division, rec.Amount)
	}
	sort.Strings(p.RowKeys)
	sort.Strings(p.ColKeys)
	return p
}

// AccountLabel keys an account row as "codigo (ABREV) - sucursal", so a
// code purchased through several branches keeps one row per branch.
func AccountLabel(rec PurchaseRecord, cfg *refdata.Config) string {
	return rec.AccountCode + " (" + cfg.AbbrevOf(rec.AccountCode) + ") - " + rec.Branch
}

// AccountByBranch pivots account-branch rows against branches, used by
// the ranking views. Rows come back ordered by total, largest first.
func AccountByBranch(records []PurchaseRecord, cfg *refdata.Config) *Pivot {
	p := NewPivot()
	for _, rec := range records {
		p.Add(AccountLabel(rec, cfg), rec.Branch, rec.Amount)
	}
	sort.Strings(p.ColKeys)
	p.SortRowsByTotalDesc()
	return p
}

// AccountByMonth pivots account-branch rows against chronological months.
func AccountByMonth(records []PurchaseRecord, cfg *refdata.Config) *Pivot {
	p := NewPivot()
	for _, rec := range records {
		p.Add(AccountLabel(rec, cfg), MonthLabel(MonthStart(rec.PeriodDate)), rec.Amount)
	}
	p.OrderCols(monthOrder(records))
	p.SortRowsByTotalDesc()
	return p
}

// DivisionTotal is one slice of the division share breakdown.
type DivisionTotal struct {
	Division string
	Abbrev   string
	Color    string
	Amount   decimal.Decimal
	Pct      float64
}

// TotalsByDivision sums per division and computes each share of the
// division-scoped total, ordered largest first.
func TotalsByDivision(records []PurchaseRecord, cfg *refdata.Config) []DivisionTotal {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		division, ok := cfg.Resolve(rec.AccountCode)
		if !ok {
			continue
		}
		sums[division] = sums[division].Add(rec.Amount)
	}
	grand := decimal.Zero
	for _, amount := range sums {
		grand = grand.Add(amount)
	}
	totals := make([]DivisionTotal, 0, len(sums))
	for division, amount := range sums {
		style := cfg.DivisionStyle(division)
		entry := DivisionTotal{Division: division, Abbrev: style.Abbrev, Color: style.Color, Amount: amount}
		if !grand.IsZero() {
			entry.Pct, _ = amount.Div(grand).Mul(decimal.NewFromInt(100)).Float64()
		}
		totals = append(totals, entry)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount.Equal(totals[j].Amount) {
			return totals[i].Division < totals[j].Division
		}
		return totals[i].Amount.GreaterThan(totals[j].Amount)
	})
	return totals
}

// FilterLinked splits by reconciliation state: linked=true keeps rows
// already reconciled in the upstream system.
func FilterLinked(records []PurchaseRecord, linked bool) []PurchaseRecord {
	out := make([]PurchaseRecord, 0, len(records))
	for _, rec := range records {
		if rec.Linked == linked {
			out = append(out, rec)
		}
	}
	return out
}

// FilterBranches keeps records from the selected branches. An empty
// selection keeps everything.
func FilterBranches(records []PurchaseRecord, branches []string) []PurchaseRecord {
	if len(branches) == 0 {
		return records
	}
	allowed := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		allowed[b] = struct{}{}
	}
	out := make([]PurchaseRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := allowed[rec.Branch]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// FilterBeforeMonth drops records in or after the given month. The
// unlinked-by-branch chart uses it to hide the still-moving current
// month.
func FilterBeforeMonth(records []PurchaseRecord, month time.Time) []PurchaseRecord {
	cutoff := MonthStart(month)
	out := make([]PurchaseRecord, 0, len(records))
	for _, rec := range records {
		if MonthStart(rec.PeriodDate).Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}
