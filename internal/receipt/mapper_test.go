package receipt

import (
	"strings"
	"testing"
)

func TestMapColumnsSuccess(t *testing.T) {
	result := MapColumns([]string{"Item Description", "Qty", "Net Amt"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Mapping[FieldProductName] != 0 || result.Mapping[FieldQuantity] != 1 || result.Mapping[FieldNetAmount] != 2 {
		t.Fatalf("unexpected mapping: %+v", result.Mapping)
	}
	if result.PriceColumnIndex != 2 || result.PriceColumnType != FieldNetAmount {
		t.Fatalf("unexpected price column: idx=%d type=%s", result.PriceColumnIndex, result.PriceColumnType)
	}
	if len(result.Decisions) != 3 {
		t.Fatalf("want 3 decisions, got %d", len(result.Decisions))
	}
}

func TestMapColumnsMissingRequired(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
	}{
		{name: "no qty no price", headers: []string{"Item Description", "S.No"}},
		{name: "no product name", headers: []string{"Qty", "Net Amt"}},
		{name: "no price column", headers: []string{"Item Description", "Qty", "HSN Code"}},
		{name: "empty header row", headers: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := MapColumns(tc.headers)
			if result.Success {
				t.Fatalf("expected failure, got %+v", result)
			}
			if result.Mapping != nil {
				t.Fatalf("mapping must be nil on failure, got %+v", result.Mapping)
			}
			if result.PriceColumnIndex != -1 || result.PriceColumnType != FieldUnknown {
				t.Fatalf("unexpected price column on failure: idx=%d type=%s", result.PriceColumnIndex, result.PriceColumnType)
			}
			if len(result.Decisions) != len(tc.headers) {
				t.Fatalf("want %d decisions, got %d", len(tc.headers), len(result.Decisions))
			}
		})
	}
}

func TestMapColumnsPricePriority(t *testing.T) {
	cases := []struct {
		name     string
		headers  []string
		wantIdx  int
		wantType StandardField
	}{
		{name: "net over mrp", headers: []string{"Item", "Qty", "MRP", "Net Amt"}, wantIdx: 3, wantType: FieldNetAmount},
		{name: "net over gross", headers: []string{"Item", "Qty", "Gross Amt", "Net Amount"}, wantIdx: 3, wantType: FieldNetAmount},
		{name: "mrp over gross", headers: []string{"Item", "Qty", "Gross Amt", "MRP"}, wantIdx: 3, wantType: FieldMRP},
		{name: "gross alone", headers: []string{"Item", "Qty", "Gross Amt"}, wantIdx: 2, wantType: FieldGrossAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := MapColumns(tc.headers)
			if !result.Success {
				t.Fatalf("expected success, got %+v", result)
			}
			if result.PriceColumnIndex != tc.wantIdx || result.PriceColumnType != tc.wantType {
				t.Fatalf("got idx=%d type=%s want idx=%d type=%s", result.PriceColumnIndex, result.PriceColumnType, tc.wantIdx, tc.wantType)
			}
		})
	}
}

func TestMapColumnsDuplicateHeaders(t *testing.T) {
	result := MapColumns([]string{"Qty", "Item", "Quantity", "Net Amt"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Mapping[FieldQuantity] != 0 {
		t.Fatalf("first occurrence must win, got quantity at %d", result.Mapping[FieldQuantity])
	}

	dup := result.Decisions[2]
	if dup.AssignedField != FieldUnknown || dup.Confidence != 0 {
		t.Fatalf("duplicate must be logged as unassigned: %+v", dup)
	}
	if !strings.Contains(dup.Reason, "already claimed") {
		t.Fatalf("duplicate reason should name the claiming column: %q", dup.Reason)
	}
}

func TestMapColumnsDecisionOrder(t *testing.T) {
	headers := []string{"S.No", "Item Description", "HSN", "Qty", "Net Amt"}
	result := MapColumns(headers)
	if len(result.Decisions) != len(headers) {
		t.Fatalf("want %d decisions, got %d", len(headers), len(result.Decisions))
	}
	for i, decision := range result.Decisions {
		if decision.HeaderText != headers[i] {
			t.Fatalf("decision %d out of order: got %q want %q", i, decision.HeaderText, headers[i])
		}
	}
	if result.Decisions[0].AssignedField != FieldUnknown {
		t.Fatalf("S.No must be unknown: %+v", result.Decisions[0])
	}
	if result.Decisions[1].AssignedField != FieldProductName || result.Decisions[1].Confidence != 1 {
		t.Fatalf("unexpected product name decision: %+v", result.Decisions[1])
	}
}
