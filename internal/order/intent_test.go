package order

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSide(t *testing.T) {
	cases := []struct {
		raw  string
		want Side
		ok   bool
	}{
		{"buy", Buy, true},
		{"BUY", Buy, true},
		{"long", Buy, true},
		{"sell", Sell, true},
		{"short", Sell, true},
		{"", Buy, true},
		{"  Sell ", Sell, true},
		{"hold", Buy, false},
	}
	for _, tc := range cases {
		got, err := ParseSide(tc.raw)
		if tc.ok != (err == nil) {
			t.Fatalf("%q: unexpected error state: %v", tc.raw, err)
		}
		if err == nil && got != tc.want {
			t.Fatalf("%q: got %v want %v", tc.raw, got, tc.want)
		}
	}
}

func TestBaseUnitsFloorsToScale(t *testing.T) {
	cases := []struct {
		qty      string
		decimals int
		want     int64
	}{
		{"0.0001", 8, 10000},
		{"1", 8, 100000000},
		{"0.123456789", 8, 12345678},
		{"0.5", 4, 5000},
		{"2.71828", 2, 271},
	}
	for _, tc := range cases {
		q, err := decimal.NewFromString(tc.qty)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.qty, err)
		}
		intent := Intent{Quantity: q, SizeDecimals: tc.decimals}
		got, err := intent.BaseUnits()
		if err != nil {
			t.Fatalf("%q/%d: %v", tc.qty, tc.decimals, err)
		}
		if got != tc.want {
			t.Fatalf("%q/%d: got %d want %d", tc.qty, tc.decimals, got, tc.want)
		}
	}
}

func TestBaseUnitsRejectsDust(t *testing.T) {
	q := decimal.RequireFromString("0.000000001")
	intent := Intent{Quantity: q, SizeDecimals: 8}
	if _, err := intent.BaseUnits(); err == nil {
		t.Fatalf("sub-step quantity must error")
	}
}

func TestBaseUnitsDefaultScale(t *testing.T) {
	intent := Intent{Quantity: decimal.RequireFromString("0.0001")}
	got, err := intent.BaseUnits()
	if err != nil {
		t.Fatalf("base units: %v", err)
	}
	if got != 10000 {
		t.Fatalf("got %d", got)
	}
}

func TestParseQuantity(t *testing.T) {
	if _, err := ParseQuantity("-1"); err == nil {
		t.Fatalf("negative qty must error")
	}
	if _, err := ParseQuantity("0"); err == nil {
		t.Fatalf("zero qty must error")
	}
	if _, err := ParseQuantity("abc"); err == nil {
		t.Fatalf("non-numeric qty must error")
	}
	q, err := ParseQuantity(" 0.0001 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !q.Equal(decimal.RequireFromString("0.0001")) {
		t.Fatalf("got %s", q)
	}
}
