// Package report computes read-only views over the ledger. Every call works
// on the rows it is given; nothing is cached between calls.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pfo-dev/pfo/internal/ledger"
)

// Source supplies the current ledger rows. *ledger.Store satisfies it.
type Source interface {
	Rows() []ledger.Entry
}

// Total is the summed amount of one (bucket, description, category) group.
type Total struct {
	Bucket      time.Time
	Description string
	Category    string
	Amount      decimal.Decimal
}

// GroupedTotals sums amounts by bucket, description and category, sorted by
// bucket then description then category.
func GroupedTotals(src Source, g Granularity) []Total {
	type key struct {
		bucket      time.Time
		description string
		category    string
	}
	sums := make(map[key]decimal.Decimal)
	var order []key
	for _, e := range src.Rows() {
		k := key{g.Truncate(e.Date), e.Description, e.Category}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
			sums[k] = decimal.Zero
		}
		sums[k] = sums[k].Add(e.Amount)
	}

	out := make([]Total, len(order))
	for i, k := range order {
		out[i] = Total{Bucket: k.bucket, Description: k.description, Category: k.category, Amount: sums[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Bucket.Equal(out[j].Bucket) {
			return out[i].Bucket.Before(out[j].Bucket)
		}
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategoryTotal is the absolute amount moved under one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// TopCategories ranks categories by the sum of absolute amounts, largest
// first. Ties are ordered by name. n <= 0 returns every category.
func TopCategories(src Source, n int) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range src.Rows() {
		sums[e.Category] = sums[e.Category].Add(e.Amount.Abs())
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, amt := range sums {
		out = append(out, CategoryTotal{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// InstitutionTotal is one institution's exposure: the absolute amount put
// into the investment category plus its latest absolute balance.
type InstitutionTotal struct {
	Institution string
	Invested    decimal.Decimal
	Balance     decimal.Decimal
	Total       decimal.Decimal
}

// InstitutionDistribution combines investments and latest balances per
// institution, largest total first.
func InstitutionDistribution(src Source, investmentCategory string) []InstitutionTotal {
	byInst := make(map[string]*InstitutionTotal)
	get := func(name string) *InstitutionTotal {
		it, ok := byInst[name]
		if !ok {
			it = &InstitutionTotal{Institution: name}
			byInst[name] = it
		}
		return it
	}

	// Rows are in ledger order, so the last write per institution wins.
	for _, e := range src.Rows() {
		it := get(e.Institution)
		if e.Category == investmentCategory {
			it.Invested = it.Invested.Add(e.Amount.Abs())
		}
		it.Balance = e.Balance().Abs()
	}

	out := make([]InstitutionTotal, 0, len(byInst))
	for _, it := range byInst {
		it.Total = it.Invested.Add(it.Balance)
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Institution < out[j].Institution
	})
	return out
}

// BalancePoint is the closing balance of one bucket.
type BalancePoint struct {
	Bucket  time.Time
	Balance decimal.Decimal
}

// PeriodEndBalances returns the last balance observed in each bucket, in
// chronological order.
func PeriodEndBalances(src Source, g Granularity) []BalancePoint {
	var out []BalancePoint
	for _, e := range src.Rows() {
		b := g.Truncate(e.Date)
		if n := len(out); n > 0 && out[n-1].Bucket.Equal(b) {
			out[n-1].Balance = e.Balance()
			continue
		}
		out = append(out, BalancePoint{Bucket: b, Balance: e.Balance()})
	}
	return out
}
