// Package money holds the rounding and formatting rules for minor-unit amounts.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundMinor rounds a fractional minor-unit value to the nearest integer,
// half away from zero.
func RoundMinor(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

// Format renders minor units as a major-unit string, e.g. 123456 with two
// digits becomes "1234.56".
func Format(amount int64, decimalDigits int) string {
	if decimalDigits < 0 {
		decimalDigits = 0
	}
	return decimal.New(amount, -int32(decimalDigits)).StringFixed(int32(decimalDigits))
}

// DailyRate converts an annual effective rate in percent to the equivalent
// daily compounding rate: (1 + r/100)^(1/365) - 1.
func DailyRate(annualPercent float64) float64 {
	return math.Pow(1+annualPercent/100, 1.0/365) - 1
}

// DailyYield is balance * DailyRate(annualPercent) rounded to minor units.
// Non-positive balances or rates yield nothing.
func DailyYield(balance int64, annualPercent float64) int64 {
	if balance <= 0 || annualPercent <= 0 {
		return 0
	}
	rate := decimal.NewFromFloat(DailyRate(annualPercent))
	return decimal.NewFromInt(balance).Mul(rate).Round(0).IntPart()
}
