package receipt

import (
	"fmt"
	"strings"
)

// MappingDecision is the audit record for one input header, in input order.
type MappingDecision struct {
	HeaderText    string        `json:"headerText"`
	AssignedField StandardField `json:"assignedField"`
	Confidence    float64       `json:"confidence"`
	Reason        string        `json:"reason"`
}

// MapResult is the outcome of mapping one header row. Mapping is nil when
// Success is false; Decisions is always complete.
type MapResult struct {
	Success          bool
	Mapping          map[StandardField]int
	PriceColumnIndex int
	PriceColumnType  StandardField
	Decisions        []MappingDecision
}

// priceFieldPriority is fixed: net amount is the charged amount and always
// preferred over the printed MRP or the gross amount.
var priceFieldPriority = []StandardField{FieldNetAmount, FieldMRP, FieldGrossAmount}

// MapColumns resolves which column index feeds which standard field for one
// header row. When several headers map to the same field the first
// occurrence wins; later duplicates are logged as overridden and left out
// of the mapping. Mapping requires productName, quantity and at least one
// price column.
func MapColumns(headers []string) MapResult {
	mapping := make(map[StandardField]int)
	decisions := make([]MappingDecision, 0, len(headers))

	for i, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))
		field := NormalizeHeader(header)

		if field == FieldUnknown {
			decisions = append(decisions, MappingDecision{
				HeaderText:    header,
				AssignedField: FieldUnknown,
				Confidence:    0,
				Reason:        "no matching synonym",
			})
			continue
		}

		if prev, taken := mapping[field]; taken {
			decisions = append(decisions, MappingDecision{
				HeaderText:    header,
				AssignedField: FieldUnknown,
				Confidence:    0,
				Reason:        fmt.Sprintf("synonym %q matched %s but column %d already claimed it", normalized, field, prev),
			})
			continue
		}

		mapping[field] = i
		decisions = append(decisions, MappingDecision{
			HeaderText:    header,
			AssignedField: field,
			Confidence:    1,
			Reason:        fmt.Sprintf("matched synonym %q", normalized),
		})
	}

	priceIndex := -1
	priceType := FieldUnknown
	for _, field := range priceFieldPriority {
		if idx, ok := mapping[field]; ok {
			priceIndex = idx
			priceType = field
			break
		}
	}

	_, hasName := mapping[FieldProductName]
	_, hasQty := mapping[FieldQuantity]
	if !hasName || !hasQty || priceIndex < 0 {
		return MapResult{
			Success:          false,
			Mapping:          nil,
			PriceColumnIndex: -1,
			PriceColumnType:  FieldUnknown,
			Decisions:        decisions,
		}
	}

	return MapResult{
		Success:          true,
		Mapping:          mapping,
		PriceColumnIndex: priceIndex,
		PriceColumnType:  priceType,
		Decisions:        decisions,
	}
}
