package receipt

import (
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  StandardField
	}{
		{name: "plain qty", input: "Qty", want: FieldQuantity},
		{name: "padded upper qty", input: "  QTY  ", want: FieldQuantity},
		{name: "item description", input: "Item Description", want: FieldProductName},
		{name: "net amt", input: "Net Amt", want: FieldNetAmount},
		{name: "mrp dotted", input: "M.R.P.", want: FieldMRP},
		{name: "gross value", input: "gross value", want: FieldGrossAmount},
		{name: "unrecognized", input: "Random Header", want: FieldUnknown},
		{name: "serial number", input: "S.No", want: FieldUnknown},
		{name: "empty", input: "", want: FieldUnknown},
		{name: "whitespace only", input: "   ", want: FieldUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeHeader(tc.input); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestNormalizeHeaderAllVariations(t *testing.T) {
	for field, synonyms := range headerVariations {
		for _, synonym := range synonyms {
			if got := NormalizeHeader(synonym); got != field {
				t.Fatalf("synonym %q: got %s want %s", synonym, got, field)
			}
			// Case and surrounding whitespace must not matter.
			decorated := "  " + strings.ToUpper(synonym) + "\t"
			if got := NormalizeHeader(decorated); got != field {
				t.Fatalf("decorated synonym %q: got %s want %s", decorated, got, field)
			}
		}
	}
}

func TestSynonymSetsDisjoint(t *testing.T) {
	seen := map[string]StandardField{}
	for field, synonyms := range headerVariations {
		for _, synonym := range synonyms {
			if prev, ok := seen[synonym]; ok {
				t.Fatalf("synonym %q claimed by both %s and %s", synonym, prev, field)
			}
			seen[synonym] = field
		}
	}
}
