package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

const tolerance = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func expense(vehicleID string, grossCents int64, rate float64) Expense {
	return Expense{
		ID:        "e1",
		VehicleID: vehicleID,
		Category:  CategoryFuel,
		Gross:     Money{Cents: grossCents},
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		VATRate:   rate,
	}
}

func TestComputeBase(t *testing.T) {
	cases := []struct {
		name  string
		gross float64
		rate  float64
		base  float64
		err   error
	}{
		{"standard rate", 1000, 20, 833.3333333333334, nil},
		{"round gross", 1200, 20, 1000, nil},
		{"zero rate", 100, 0, 100, nil},
		{"one percent", 101, 1, 100, nil},
		{"zero gross", 0, 20, 0, ErrInvalidAmount},
		{"negative gross", -5, 20, 0, ErrInvalidAmount},
		{"negative rate", 100, -1, 0, ErrInvalidRate},
		{"rate at 100", 100, 100, 0, ErrInvalidRate},
		{"rate above 100", 100, 120, 0, ErrInvalidRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, err := ComputeBase(tc.gross, tc.rate)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approx(base, tc.base) {
				t.Fatalf("base = %v, want %v", base, tc.base)
			}
			// base + vat must round-trip to gross
			if vat := tc.gross - base; !approx(base+vat, tc.gross) {
				t.Fatalf("base+vat = %v, want %v", base+vat, tc.gross)
			}
		})
	}
}

func TestComputePostingCommercial(t *testing.T) {
	v := Vehicle{ID: "v1", Plate: "34TIC01", Class: ClassCommercial}
	p, err := ComputePosting(expense("v1", 100000, 20), v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(p.GeneralExpense, 833.3333333333334) {
		t.Fatalf("770 = %v", p.GeneralExpense)
	}
	if !approx(p.DeductibleVAT, 166.66666666666663) {
		t.Fatalf("191 = %v", p.DeductibleVAT)
	}
	if p.NonDeductibleExpense != 0 {
		t.Fatalf("689 = %v, want 0", p.NonDeductibleExpense)
	}
	if p.Payable != 1000 {
		t.Fatalf("320 = %v, want 1000", p.Payable)
	}
}

func TestComputePostingPassenger(t *testing.T) {
	v := Vehicle{ID: "v1", Plate: "34BNK01", Class: ClassPassenger}
	p, err := ComputePosting(expense("v1", 120000, 20), v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(p.GeneralExpense, 700) {
		t.Fatalf("770 = %v, want 700", p.GeneralExpense)
	}
	if !approx(p.DeductibleVAT, 140) {
		t.Fatalf("191 = %v, want 140", p.DeductibleVAT)
	}
	if !approx(p.NonDeductibleExpense, 360) {
		t.Fatalf("689 = %v, want 360", p.NonDeductibleExpense)
	}
	if p.Payable != 1200 {
		t.Fatalf("320 = %v, want 1200", p.Payable)
	}
}

func TestPostingBalanceInvariant(t *testing.T) {
	vehicles := []Vehicle{
		{ID: "p", Plate: "34BNK01", Class: ClassPassenger},
		{ID: "c", Plate: "34TIC01", Class: ClassCommercial},
	}
	grosses := []int64{1, 99, 100000, 120000, 999999, 123456789}
	rates := []float64{0, 1, 8, 10, 18, 20, 99.9}

	for _, v := range vehicles {
		for _, g := range grosses {
			for _, r := range rates {
				p, err := ComputePosting(expense(v.ID, g, r), v)
				if err != nil {
					t.Fatalf("class=%s gross=%d rate=%v: %v", v.Class, g, r, err)
				}
				sum := p.GeneralExpense + p.DeductibleVAT + p.NonDeductibleExpense
				if math.Abs(sum-p.Payable) > tolerance {
					t.Fatalf("class=%s gross=%d rate=%v: debits %v != credit %v",
						v.Class, g, r, sum, p.Payable)
				}
			}
		}
	}
}

func TestPassengerSplitProperties(t *testing.T) {
	v := Vehicle{ID: "p", Plate: "06BNK99", Class: ClassPassenger}
	for _, g := range []int64{150, 100000, 7777777} {
		e := expense("p", g, 18)
		p, err := ComputePosting(e, v)
		if err != nil {
			t.Fatalf("gross=%d: %v", g, err)
		}
		base, _ := e.Base()
		if !approx(p.GeneralExpense, 0.70*base) {
			t.Fatalf("gross=%d: 770 = %v, want %v", g, p.GeneralExpense, 0.70*base)
		}
		if p.NonDeductibleExpense <= 0 {
			t.Fatalf("gross=%d: expected positive 689, got %v", g, p.NonDeductibleExpense)
		}
	}
}

func TestComputePostingZeroRate(t *testing.T) {
	v := Vehicle{ID: "c", Plate: "34TIC01", Class: ClassCommercial}
	p, err := ComputePosting(expense("c", 10000, 0), v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(p.GeneralExpense, 100) || !approx(p.DeductibleVAT, 0) {
		t.Fatalf("zero rate: 770=%v 191=%v", p.GeneralExpense, p.DeductibleVAT)
	}
}

func TestComputePostingErrors(t *testing.T) {
	v := Vehicle{ID: "v1", Plate: "34TIC01", Class: ClassCommercial}

	if _, err := ComputePosting(expense("v1", 0, 20), v); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ComputePosting(expense("v1", 100, 100), v); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	bad := Vehicle{ID: "v1", Plate: "34XXX01", Class: "tractor"}
	if _, err := ComputePosting(expense("v1", 100, 20), bad); !errors.Is(err, ErrInvalidClass) {
		t.Fatalf("expected ErrInvalidClass, got %v", err)
	}
}
