package money

import (
	"math"
	"testing"
)

func TestRoundMinor(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{1500.4, 1500},
		{1500.5, 1501},
		{-2.5, -3},
		{0, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := RoundMinor(tt.in); got != tt.want {
			t.Errorf("RoundMinor(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount int64
		digits int
		want   string
	}{
		{123456, 2, "1234.56"},
		{5, 2, "0.05"},
		{-150, 2, "-1.50"},
		{5000000, 0, "5000000"},
	}
	for _, tt := range tests {
		if got := Format(tt.amount, tt.digits); got != tt.want {
			t.Errorf("Format(%d, %d) = %q, want %q", tt.amount, tt.digits, got, tt.want)
		}
	}
}

func TestDailyYield(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		rate    float64
		want    int64
	}{
		// 1_000_000 * (1.12^(1/365) - 1) = 310.54...
		{"twelve percent", 1_000_000, 12, 311},
		{"zero rate", 1_000_000, 0, 0},
		{"zero balance", 0, 12, 0},
		{"negative balance", -5_000, 12, 0},
		{"tiny balance rounds to zero", 100, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DailyYield(tt.balance, tt.rate); got != tt.want {
				t.Errorf("DailyYield(%d, %v) = %d, want %d", tt.balance, tt.rate, got, tt.want)
			}
		})
	}
}

func TestDailyYieldMonotonic(t *testing.T) {
	prev := int64(0)
	for balance := int64(0); balance <= 10_000_000; balance += 250_000 {
		got := DailyYield(balance, 12)
		if got < prev {
			t.Fatalf("yield decreased at balance %d: %d < %d", balance, got, prev)
		}
		if float64(got) > float64(balance)*0.12/365*1.01+1 {
			t.Fatalf("yield %d exceeds simple-interest bound for balance %d", got, balance)
		}
		prev = got
	}
}
