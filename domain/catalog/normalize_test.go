package catalog

import (
	"testing"
)

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		name     string
		input    Cell
		expected string
	}{
		{"nil", nil, ""},
		{"empty string", "", ""},
		{"whitespace only", "   \t  ", ""},
		{"plain", "Chair-100", "Chair-100"},
		{"surrounding whitespace", "  Chair-100  ", "Chair-100"},
		{"newline run", "Ergonomic\n\nchair", "Ergonomic chair"},
		{"crlf", "line one\r\nline two", "line one line two"},
		{"inner whitespace run", "a   b\t\tc", "a b c"},
		{"mixed", "  foo \n bar  ", "foo bar"},
		{"integer", 42, "42"},
		{"float", 47080000.0, "47080000"},
		{"fractional float", 12.5, "12.5"},
		{"bool", true, "true"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := NormalizeCell(test.input); got != test.expected {
				t.Errorf("NormalizeCell(%v) = %q, want %q", test.input, got, test.expected)
			}
		})
	}
}
