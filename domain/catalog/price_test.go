package catalog

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    Cell
		expected int64
		ok       bool
	}{
		{"nil", nil, 0, false},
		{"empty string", "", 0, false},
		{"native int", 47080000, 47080000, true},
		{"native int64", int64(1250000), 1250000, true},
		{"native float rounds", 1250000.6, 1250001, true},
		{"plain digits", "47080000", 47080000, true},
		{"dot thousands", "47.080.000", 47080000, true},
		{"dot thousands with fraction", "1.234,50", 1234, true},
		{"comma decimal", "1234,56", 1235, true},
		{"plain decimal", "1234.56", 1235, true},
		{"rupiah prefix", "Rp 1.250.000", 1250000, true},
		{"idr prefix", "IDR 47.080.000", 47080000, true},
		{"lowercase prefix", "rp1000", 1000, true},
		{"inner spaces", "1 250 000", 1250000, true},
		{"garbage with digits", "abc123def456", 123456, true},
		{"no digits", "call for price", 0, false},
		{"dash", "-", 0, false},
		{"overflow truncates to 12 digits", "12345678901234567890", 123456789012, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := ParsePrice(test.input)
			if ok != test.ok {
				t.Fatalf("ParsePrice(%v) ok = %v, want %v", test.input, ok, test.ok)
			}
			if got != test.expected {
				t.Errorf("ParsePrice(%v) = %d, want %d", test.input, got, test.expected)
			}
		})
	}
}

// Every notation of the same amount must land on the same integer.
func TestParsePriceLocaleAgreement(t *testing.T) {
	inputs := []Cell{"47.080.000", "47080000", 47080000, "Rp 47.080.000", "IDR 47080000", 47080000.0}
	for _, input := range inputs {
		got, ok := ParsePrice(input)
		if !ok || got != 47080000 {
			t.Errorf("ParsePrice(%v) = (%d, %v), want (47080000, true)", input, got, ok)
		}
	}
}

func TestPreferredPrice(t *testing.T) {
	price := int64(500)

	// List-price detail keys win over the stored price.
	rec := ProductRecord{
		Price:   &price,
		Details: Details{"DPP": "Rp 1.000.000"},
	}
	if got, ok := PreferredPrice(rec); !ok || got != 1000000 {
		t.Errorf("PreferredPrice = (%d, %v), want (1000000, true)", got, ok)
	}

	// Stored price wins over the fallback keys.
	rec = ProductRecord{
		Price:   &price,
		Details: Details{"MSRP": "750"},
	}
	if got, ok := PreferredPrice(rec); !ok || got != 500 {
		t.Errorf("PreferredPrice = (%d, %v), want (500, true)", got, ok)
	}

	// Fallback keys apply when no price is stored.
	rec = ProductRecord{Details: Details{"Bottom Price": "250"}}
	if got, ok := PreferredPrice(rec); !ok || got != 250 {
		t.Errorf("PreferredPrice = (%d, %v), want (250, true)", got, ok)
	}

	rec = ProductRecord{Details: Details{"Color": "Red"}}
	if _, ok := PreferredPrice(rec); ok {
		t.Error("expected no preferred price")
	}
}
