package report

import (
	"fmt"
	"sort"
	"strings"

	"aracgider/internal/core"
)

// TableHeader is the fixed CSV header row. Consumers depend on it verbatim.
const TableHeader = "Date,Plate,VehicleClass,Category,Gross,VatRate,Base,770,191,689,320,Note"

// Table renders the full expense collection as CSV, one row per expense,
// newest first. Rows whose vehicle cannot be resolved are skipped, matching
// the aggregation exclusion policy, so one dangling reference never blocks
// the export.
func Table(expenses []core.Expense, vehicles map[string]core.Vehicle) string {
	ordered := make([]core.Expense, len(expenses))
	copy(ordered, expenses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	var b strings.Builder
	b.WriteString(TableHeader + "\n")

	for _, e := range ordered {
		v, ok := vehicles[e.VehicleID]
		if !ok {
			continue
		}
		p, err := core.ComputePosting(e, v)
		if err != nil {
			continue
		}
		base, _ := e.Base()

		fmt.Fprintf(&b, "%s,%s,%s,%s,%.2f,%.0f,%.2f,%.2f,%.2f,%.2f,%.2f,%s\n",
			e.Date.Format("2006-01-02"),
			v.Plate,
			v.Class,
			e.Category,
			e.Gross.Amount(),
			e.VATRate,
			base,
			p.GeneralExpense,
			p.DeductibleVAT,
			p.NonDeductibleExpense,
			p.Payable,
			quoteNote(e.Note),
		)
	}
	return b.String()
}

// quoteNote always double-quotes the free-form note so embedded commas and
// newlines cannot break the row; embedded quotes are doubled per RFC 4180.
func quoteNote(note string) string {
	return `"` + strings.ReplaceAll(note, `"`, `""`) + `"`
}
