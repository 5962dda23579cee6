package receipt

import "strings"

// StandardField is one of the canonical line-item attributes a receipt
// column can carry.
type StandardField string

const (
	FieldProductName StandardField = "productName"
	FieldQuantity    StandardField = "quantity"
	FieldNetAmount   StandardField = "netAmount"
	FieldMRP         StandardField = "mrp"
	FieldGrossAmount StandardField = "grossAmount"
	FieldUnknown     StandardField = "unknown"
)

// headerVariations lists the recognized synonyms per field. Matching is
// exact after trimming and lowercasing; the sets must stay disjoint.
var headerVariations = map[StandardField][]string{
	FieldProductName: {
		"product name", "product", "item description", "item name", "item",
		"description", "desc", "particulars", "goods description", "name",
	},
	FieldQuantity: {
		"qty", "qty.", "quantity", "pcs", "pcs.", "units", "nos", "nos.",
		"no of units", "pieces", "count",
	},
	FieldNetAmount: {
		"net amt", "net amt.", "net amount", "net value", "net", "amount",
		"amt", "taxable value", "line total", "total value",
	},
	FieldMRP: {
		"mrp", "m.r.p", "m.r.p.", "max retail price", "maximum retail price",
		"retail price",
	},
	FieldGrossAmount: {
		"gross amt", "gross amt.", "gross amount", "gross value", "gross",
		"total amount", "amount incl tax", "amount incl. tax",
	},
}

var synonymToField = buildSynonymLookup()

func buildSynonymLookup() map[string]StandardField {
	out := make(map[string]StandardField)
	for field, synonyms := range headerVariations {
		for _, synonym := range synonyms {
			out[synonym] = field
		}
	}
	return out
}

// NormalizeHeader classifies one raw column header. It never fails: empty,
// whitespace-only and unrecognized headers come back as FieldUnknown.
func NormalizeHeader(headerText string) StandardField {
	normalized := strings.ToLower(strings.TrimSpace(headerText))
	if normalized == "" {
		return FieldUnknown
	}
	if field, ok := synonymToField[normalized]; ok {
		return field
	}
	return FieldUnknown
}
