package util

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "140.50", want: 140.50},
		{name: "rupee sign", input: "₹1,234.50", want: 1234.50},
		{name: "rs prefix", input: "Rs. 99", want: 99},
		{name: "inr prefix", input: "INR 45.00", want: 45},
		{name: "trailing dash", input: "140/-", want: 140},
		{name: "indian grouping", input: "1,23,456.78", want: 123456.78},
		{name: "western grouping", input: "1,234,567.89", want: 1234567.89},
		{name: "thousand dot grouping", input: "1.000", want: 1000},
		{name: "decimal comma", input: "12,5", want: 12.5},
		{name: "integer", input: "42", want: 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAmount(tc.input)
			if got == nil {
				t.Fatalf("got nil")
			}
			if *got != tc.want {
				t.Fatalf("got %v want %v", *got, tc.want)
			}
		})
	}
}

func TestParseAmountNoNumber(t *testing.T) {
	for _, input := range []string{"", "   ", "N/A", "free"} {
		if got := ParseAmount(input); got != nil {
			t.Fatalf("input %q: want nil, got %v", input, *got)
		}
	}
}

func TestParseQtyCell(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "qty with pcs", input: "10 pcs", want: 10},
		{name: "qty with nos", input: "5 Nos.", want: 5},
		{name: "bare qty", input: "12", want: 12},
		{name: "fractional qty", input: "2.5 kg", want: 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQtyCell(tc.input)
			if got == nil {
				t.Fatalf("got nil")
			}
			if *got != tc.want {
				t.Fatalf("got %v want %v", *got, tc.want)
			}
		})
	}
}
