// Package statement turns the open payables feed into the aging views:
// due-date buckets, credit usage and the statement pivots.
package statement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucerolu/Dshb-dm/internal/compras"
	"github.com/lucerolu/Dshb-dm/internal/refdata"
)

// Aging buckets, in display order.
const (
	BucketOverdue = "Vencido"
	Bucket0to30   = "0-30 dias"
	Bucket31to60  = "31-60 dias"
	Bucket61to90  = "61-90 dias"
	Bucket91Plus  = "91+ dias"
)

// BucketOrder is the canonical column order for bucketed tables.
var BucketOrder = []string{BucketOverdue, Bucket0to30, Bucket31to60, Bucket61to90, Bucket91Plus}

// BucketColors maps each bucket to its accent color.
var BucketColors = map[string]string{
	BucketOverdue: "#EF4444",
	Bucket0to30:   "#F97316",
	Bucket31to60:  "#EAB308",
	Bucket61to90:  "#86EFAC",
	Bucket91Plus:  "#22C55E",
}

// BucketFor classifies a due date by calendar-day distance from today.
// Past dates are overdue; a payable due today lands in 0-30.
func BucketFor(due, today time.Time) string {
	diff := daysBetween(today, due)
	switch {
	case diff < 0:
		return BucketOverdue
	case diff <= 30:
		return Bucket0to30
	case diff <= 60:
		return Bucket31to60
	case diff <= 90:
		return Bucket61to90
	default:
		return Bucket91Plus
	}
}

func daysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// CreditUsage summarizes the statement against a credit limit.
type CreditUsage struct {
	Limit        decimal.Decimal
	Used         decimal.Decimal
	Available    decimal.Decimal
	PctUsed      float64
	PctAvailable float64
}

// Usage computes credit consumption from the statement total.
func Usage(s compras.Statement, limit decimal.Decimal) CreditUsage {
	used := decimal.Zero
	for _, rec := range s.Records {
		used = used.Add(rec.Amount)
	}
	usage := CreditUsage{Limit: limit, Used: used, Available: limit.Sub(used)}
	if !limit.IsZero() {
		usage.PctUsed, _ = used.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
		usage.PctAvailable = 100 - usage.PctUsed
	}
	return usage
}

// DueSummary holds the three headline maturity figures.
type DueSummary struct {
	Overdue     decimal.Decimal
	DueWithin30 decimal.Decimal
	DueAfter90  decimal.Decimal
}

// Summarize splits the statement into overdue, due within 30 days and
// due beyond 90 days, measured from today.
func Summarize(s compras.Statement, today time.Time) DueSummary {
	var sum DueSummary
	sum.Overdue = decimal.Zero
	sum.DueWithin30 = decimal.Zero
	sum.DueAfter90 = decimal.Zero
	for _, rec := range s.Records {
		diff := daysBetween(today, rec.DueDate)
		switch {
		case diff < 0:
			sum.Overdue = sum.Overdue.Add(rec.Amount)
		case diff <= 30:
			sum.DueWithin30 = sum.DueWithin30.Add(rec.Amount)
		}
		if diff > 90 {
			sum.DueAfter90 = sum.DueAfter90.Add(rec.Amount)
		}
	}
	return sum
}

// NextDue returns the earliest due date on or after today and how many
// days remain, or ok=false when nothing is pending.
func NextDue(s compras.Statement, today time.Time) (date time.Time, days int, ok bool) {
	for _, rec := range s.Records {
		diff := daysBetween(today, rec.DueDate)
		if diff < 0 {
			continue
		}
		if !ok || rec.DueDate.Before(date) {
			date, days, ok = rec.DueDate, diff, true
		}
	}
	return date, days, ok
}

// accountLabel renders "codigo (abrev) - sucursal" the way the
// statement tables identify an account. Unmapped codes keep the bare
// code.
func accountLabel(rec compras.AgingRecord, cfg *refdata.Config) string {
	label := rec.AccountCode
	if division, ok := cfg.DivisionOf(rec.AccountCode); ok {
		label += " (" + cfg.DivisionStyle(division).Abbrev + ")"
	}
	return label + " - " + rec.Branch
}

// ByDueDate pivots account rows against chronological due dates.
func ByDueDate(s compras.Statement, cfg *refdata.Config) *compras.Pivot {
	dates := make(map[time.Time]struct{})
	for _, rec := range s.Records {
		dates[rec.DueDate] = struct{}{}
	}
	ordered := make([]time.Time, 0, len(dates))
	for d := range dates {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	p := compras.NewPivot()
	for _, rec := range s.Records {
		p.Add(accountLabel(rec, cfg), rec.DueDate.Format("02/01/2006"), rec.Amount)
	}
	order := make([]string, 0, len(ordered))
	for _, d := range ordered {
		order = append(order, d.Format("02/01/2006"))
	}
	p.OrderCols(order)
	p.SortRows(func(a, b string) bool { return a < b })
	return p
}

// ByBucket pivots "codigo - division - sucursal" rows against the five
// aging buckets, columns in canonical order.
func ByBucket(s compras.Statement, cfg *refdata.Config, today time.Time) *compras.Pivot {
	p := compras.NewPivot()
	for _, rec := range s.Records {
		row := rec.AccountCode + " - " + cfg.AbbrevOf(rec.AccountCode) + " - " + cfg.BranchAbbrev(rec.Branch)
		p.Add(row, BucketFor(rec.DueDate, today), rec.Amount)
	}
	p.OrderCols(BucketOrder)
	p.SortRows(func(a, b string) bool { return a < b })
	return p
}

// BucketShare is one slice of the debt distribution donut.
type BucketShare struct {
	Bucket string
	Color  string
	Amount decimal.Decimal
	Pct    float64
}

// Distribution sums the statement per bucket, in canonical bucket
// order, with each share of the total. Empty buckets are omitted.
func Distribution(s compras.Statement, today time.Time) []BucketShare {
	sums := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, rec := range s.Records {
		bucket := BucketFor(rec.DueDate, today)
		sums[bucket] = sums[bucket].Add(rec.Amount)
		total = total.Add(rec.Amount)
	}
	shares := make([]BucketShare, 0, len(sums))
	for _, bucket := range BucketOrder {
		amount, ok := sums[bucket]
		if !ok {
			continue
		}
		share := BucketShare{Bucket: bucket, Color: BucketColors[bucket], Amount: amount}
		if !total.IsZero() {
			share.Pct, _ = amount.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		shares = append(shares, share)
	}
	return shares
}

// MonthlyDue groups the payables by due month and bucket for the
// maturity timeline, reusing the chronological month ordering of the
// purchase pivots.
func MonthlyDue(s compras.Statement, today time.Time) *compras.Pivot {
	months := make(map[time.Time]struct{})
	for _, rec := range s.Records {
		months[compras.MonthStart(rec.DueDate)] = struct{}{}
	}
	ordered := make([]time.Time, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	p := compras.NewPivot()
	for _, rec := range s.Records {
		month := compras.MonthLabel(compras.MonthStart(rec.DueDate))
		p.Add(month, BucketFor(rec.DueDate, today), rec.Amount)
	}
	rowOrder := make(map[string]int, len(ordered))
	for i, m := range ordered {
		rowOrder[compras.MonthLabel(m)] = i
	}
	p.SortRows(func(a, b string) bool { return rowOrder[a] < rowOrder[b] })
	p.OrderCols(BucketOrder)
	return p
}
