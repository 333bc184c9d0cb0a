// Package report renders computed postings as exportable text: a single
// expense as a human-readable accounting slip and a whole collection as a
// comma-delimited table. Both renderers are pure; output depends only on
// the inputs, which keeps them golden-file testable.
package report

import (
	"fmt"
	"strings"

	"aracgider/internal/core"
)

const receiptDivider = "─────────────────────────────────────"

// Receipt renders the accounting slip for one expense. Section order is
// fixed: header fields, optional note, then one block per non-zero debit
// account and always the 320 credit block.
func Receipt(e core.Expense, v core.Vehicle, p core.Posting) string {
	base, _ := e.Base()

	var b strings.Builder
	b.WriteString("MUHASEBE FİŞİ\n\n")
	fmt.Fprintf(&b, "Tarih: %s\n", e.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Araç: %s (%s)\n", v.Plate, v.Class.Label())
	fmt.Fprintf(&b, "Gider Tipi: %s\n", e.Category.Label())
	fmt.Fprintf(&b, "Toplam Tutar: %.2f TL\n", e.Gross.Amount())
	fmt.Fprintf(&b, "KDV Oranı: %%%.0f\n", e.VATRate)
	fmt.Fprintf(&b, "Matrah: %.2f TL\n", base)

	if e.Note != "" {
		fmt.Fprintf(&b, "\nAçıklama: %s\n", e.Note)
	}

	b.WriteString("\n" + receiptDivider + "\n")
	b.WriteString("MUHASEBE KAYDI\n")
	b.WriteString(receiptDivider + "\n\n")

	if p.GeneralExpense != 0 {
		fmt.Fprintf(&b, "770 - Genel Yönetim Giderleri (Borç)\n     %.2f TL\n\n", p.GeneralExpense)
	}
	if p.DeductibleVAT != 0 {
		fmt.Fprintf(&b, "191 - İndirilecek KDV (Borç)\n     %.2f TL\n\n", p.DeductibleVAT)
	}
	if p.NonDeductibleExpense != 0 {
		fmt.Fprintf(&b, "689 - K.K.E. Giderler (Borç)\n     %.2f TL\n\n", p.NonDeductibleExpense)
	}
	fmt.Fprintf(&b, "320 - Satıcılar (Alacak)\n     %.2f TL\n", p.Payable)

	return b.String()
}
