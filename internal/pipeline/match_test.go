package pipeline

import (
	"testing"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

func testProducts() []internal.ProductRecord {
	return []internal.ProductRecord{
		{ID: 1, Name: "Parle-G Biscuit 100g", Barcode: util.StringPtr("8901030865278"), RemoteUID: util.StringPtr("uid-1"), RawJSON: `{}`},
		{ID: 2, Name: "Tata Salt 1kg", Barcode: util.StringPtr("8901030111111"), RemoteUID: util.StringPtr("uid-2"), RawJSON: `{}`},
		{ID: 3, Name: "Maggi Noodles 70g", RemoteUID: util.StringPtr("uid-3"), RawJSON: `{}`},
	}
}

func TestMatcherBarcode(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, testProducts())

	item := receipt.LineItem{
		Name:     "Some unreadable scan",
		RawCells: []string{"Some unreadable scan", "8901030865278", "10", "110.50"},
	}
	res := m.Check(item)
	if res.Status != internal.DuplicateFound || res.Reason != internal.ReasonBarcode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Product == nil || res.Product.ID == nil || *res.Product.ID != 1 {
		t.Fatalf("wrong product: %+v", res.Product)
	}
}

func TestMatcherExactName(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, testProducts())

	item := receipt.LineItem{Name: "Tata Salt 1kg", RawCells: []string{"Tata Salt 1kg", "5", "140"}}
	res := m.Check(item)
	if res.Status != internal.DuplicateFound || res.Reason != internal.ReasonName {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Product == nil || res.Product.ID == nil || *res.Product.ID != 2 {
		t.Fatalf("wrong product: %+v", res.Product)
	}
}

func TestMatcherFuzzy(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, testProducts())

	item := receipt.LineItem{Name: "Parle-G Biscuits 100g", RawCells: []string{"Parle-G Biscuits 100g", "10", "110.50"}}
	res := m.Check(item)
	if res.Status == internal.DuplicateNone {
		t.Fatalf("near-identical name must at least go to review: %+v", res)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].ID != 1 {
		t.Fatalf("expected product 1 as top candidate: %+v", res.Candidates)
	}
}

func TestMatcherNoMatch(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, testProducts())

	item := receipt.LineItem{Name: "Industrial Bearing Grease 5L", RawCells: []string{"Industrial Bearing Grease 5L", "1", "900"}}
	res := m.Check(item)
	if res.Status != internal.DuplicateNone {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Product != nil {
		t.Fatalf("no product expected: %+v", res.Product)
	}
}
