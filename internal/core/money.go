// Package core implements the tax calculation engine: VAT base arithmetic,
// the four-account ledger rule for passenger and commercial vehicles, and
// the aggregation of expense collections into report summaries.
//
// This file contains money parsing and VAT-exclusive base arithmetic.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns ErrInvalidAmount for invalid formats, negative values, or zero amounts.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseRate converts a VAT rate string (percent) to a float64 in [0,100).
// Both decimal separators are accepted, like ParseDecimalToCents.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidRate
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidRate
	}
	if rate < 0 || rate >= 100 {
		return 0, ErrInvalidRate
	}
	return rate, nil
}

// Amount returns the monetary value as float64 for derivation and display.
// Cents convert exactly; rounding happens only at presentation time.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}

// ComputeBase returns the VAT-exclusive base: gross / (1 + rate/100).
// A zero rate is valid and yields base == gross.
func ComputeBase(gross, vatRate float64) (float64, error) {
	if gross <= 0 {
		return 0, ErrInvalidAmount
	}
	if vatRate < 0 || vatRate >= 100 {
		return 0, ErrInvalidRate
	}
	return gross / (1 + vatRate/100), nil
}

// Base returns the VAT-exclusive amount (matrah) of the expense.
func (e Expense) Base() (float64, error) {
	return ComputeBase(e.Gross.Amount(), e.VATRate)
}

// VATAmount returns gross minus base.
func (e Expense) VATAmount() (float64, error) {
	base, err := e.Base()
	if err != nil {
		return 0, err
	}
	return e.Gross.Amount() - base, nil
}
