package core

// statutory deductible fraction of the base for passenger vehicles
const passengerDeductibleShare = 0.70

// Posting is the derived four-account breakdown of one expense. It is never
// persisted; callers recompute it from current vehicle and expense state.
//
// Debits (770, 191, 689) must equal the credit (320) up to float rounding.
type Posting struct {
	GeneralExpense       float64 // 770 - Genel Yönetim Giderleri (borç)
	DeductibleVAT        float64 // 191 - İndirilecek KDV (borç)
	NonDeductibleExpense float64 // 689 - K.K.E. Giderler (borç)
	Payable              float64 // 320 - Satıcılar (alacak)
}

// ComputePosting derives the ledger posting for an expense on a vehicle.
//
// Commercial vehicles deduct the full base and the full VAT. Passenger
// vehicles deduct 70% of the base plus the VAT attributable to that share;
// the remaining 30% of base and its VAT go to 689 as one non-deductible
// debit. 320 always carries the gross amount owed to the supplier.
func ComputePosting(e Expense, v Vehicle) (Posting, error) {
	gross := e.Gross.Amount()
	base, err := ComputeBase(gross, e.VATRate)
	if err != nil {
		return Posting{}, err
	}

	switch v.Class {
	case ClassCommercial:
		return Posting{
			GeneralExpense:       base,
			DeductibleVAT:        gross - base,
			NonDeductibleExpense: 0,
			Payable:              gross,
		}, nil
	case ClassPassenger:
		deductible := base * passengerDeductibleShare
		deductibleVAT := deductible * e.VATRate / 100
		remainder := base - deductible
		remainderVAT := remainder * e.VATRate / 100
		return Posting{
			GeneralExpense:       deductible,
			DeductibleVAT:        deductibleVAT,
			NonDeductibleExpense: remainder + remainderVAT,
			Payable:              gross,
		}, nil
	default:
		return Posting{}, ErrInvalidClass
	}
}
