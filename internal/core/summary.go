package core

import "sort"

// Filter selects a subset of expenses. Zero-valued fields match everything.
type Filter struct {
	VehicleID string
	Category  Category
}

func (f Filter) Matches(e Expense) bool {
	if f.VehicleID != "" && f.VehicleID != e.VehicleID {
		return false
	}
	if f.Category != "" && f.Category != e.Category {
		return false
	}
	return true
}

// CategoryTotal is the per-category slice of a summary.
type CategoryTotal struct {
	Category   Category
	TotalGross float64
	Count      int
}

// Summary aggregates a filtered expense collection.
//
// RecordCount, TotalGross and ByCategory cover every surviving expense.
// The three account totals cover only expenses whose vehicle resolved;
// a dangling vehicle reference excludes the record from postings but must
// not abort the whole report.
type Summary struct {
	RecordCount               int
	TotalGross                float64
	TotalGeneralExpense       float64 // 770
	TotalDeductibleVAT        float64 // 191
	TotalNonDeductibleExpense float64 // 689
	ByCategory                []CategoryTotal
}

// Aggregate reduces expenses to a Summary under the given filter. Pure and
// idempotent: identical inputs always yield an identical Summary.
func Aggregate(expenses []Expense, vehicles map[string]Vehicle, f Filter) Summary {
	var s Summary
	byCat := make(map[Category]*CategoryTotal)

	for _, e := range expenses {
		if !f.Matches(e) {
			continue
		}
		s.RecordCount++
		s.TotalGross += e.Gross.Amount()

		ct, ok := byCat[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.TotalGross += e.Gross.Amount()
		ct.Count++

		v, ok := vehicles[e.VehicleID]
		if !ok {
			// dangling reference: keep the raw statistics, skip the posting
			continue
		}
		p, err := ComputePosting(e, v)
		if err != nil {
			continue
		}
		s.TotalGeneralExpense += p.GeneralExpense
		s.TotalDeductibleVAT += p.DeductibleVAT
		s.TotalNonDeductibleExpense += p.NonDeductibleExpense
	}

	s.ByCategory = make([]CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		s.ByCategory = append(s.ByCategory, *ct)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if a.TotalGross != b.TotalGross {
			return a.TotalGross > b.TotalGross
		}
		return a.Category.rank() < b.Category.rank()
	})
	return s
}
