package util

import "testing"

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and spaces", input: "parle-g   biscuit", want: "PARLE-G BISCUIT"},
		{name: "quotes stripped", input: `Tata "Salt" 1kg`, want: "TATA SALT 1KG"},
		{name: "multiply sign", input: "Maggi 70g × 12", want: "MAGGI 70G X 12"},
		{name: "unit suffix", input: "Dettol 500 ML.", want: "DETTOL 500 ML"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeText(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestLooksLikeBarcode(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{input: "8901030865278", want: true},
		{input: "12345678", want: true},
		{input: "1234567", want: false},
		{input: "123456789012345", want: false},
		{input: "89010308X5278", want: false},
		{input: "", want: false},
	}

	for _, tc := range cases {
		if got := LooksLikeBarcode(tc.input); got != tc.want {
			t.Fatalf("input %q: got %v want %v", tc.input, got, tc.want)
		}
	}
}

func TestDiceCoefficient(t *testing.T) {
	if got := DiceCoefficient("PARLE-G BISCUIT", "PARLE-G BISCUIT"); got != 1 {
		t.Fatalf("identical strings: got %v", got)
	}
	if got := DiceCoefficient("PARLE-G", ""); got != 0 {
		t.Fatalf("empty operand: got %v", got)
	}
	similar := DiceCoefficient("PARLE-G BISCUIT 100G", "PARLE G BISCUIT 100 G")
	different := DiceCoefficient("PARLE-G BISCUIT 100G", "TATA SALT 1KG")
	if similar <= different {
		t.Fatalf("similar %v should outscore different %v", similar, different)
	}
	if similar < 0.6 {
		t.Fatalf("similar names scored too low: %v", similar)
	}
}
