package domain

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase passthrough", "widget", "widget"},
		{"uppercase", "WIDGET", "widget"},
		{"spaces collapse to hyphen", "brake pad", "brake-pad"},
		{"mixed separators collapse", "ABC--123  x", "abc-123-x"},
		{"leading and trailing junk trimmed", "  --Bolt M8--  ", "bolt-m8"},
		{"only junk", " ---  ", ""},
		{"empty", "", ""},
		{"unicode treated as separator", "schraube Ø8", "schraube-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		partNumber string
		category   string
		itemName   string
		want       string
	}{
		{"part number wins", "fleet", "ABC-123", "brakes", "Brake Pad", "fleet:abc-123"},
		{"blank part falls back", "fleet", "", "brakes", "Brake Pad", "fleet:brakes:brake-pad"},
		{"whitespace part falls back", "fleet", "   ", "brakes", "Brake Pad", "fleet:brakes:brake-pad"},
		{"case insensitive part", "fleet", "abc 123", "", "", "fleet:abc-123"},
		{"empty category kept as segment", "shop", "", "", "Oil Filter", "shop::oil-filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveKey(tt.domain, tt.partNumber, tt.category, tt.itemName)
			if got != tt.want {
				t.Errorf("DeriveKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveKeyEquivalentSpellings(t *testing.T) {
	a := DeriveKey("fleet", "ABC-123", "brakes", "Brake Pad")
	b := DeriveKey("fleet", "abc 123", "brakes", "brake pad")
	if a != b {
		t.Errorf("equivalent spellings produced different keys: %q vs %q", a, b)
	}
}
