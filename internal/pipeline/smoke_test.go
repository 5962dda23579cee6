package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

func TestSmokeCSVToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	products := []internal.ProductRecord{
		{ID: 100, Name: "Parle-G Biscuit 100g", Barcode: util.StringPtr("8901030865278"), RemoteUID: util.StringPtr("uid-100"), RawJSON: `{}`},
		{ID: 101, Name: "Tata Salt 1kg", RemoteUID: util.StringPtr("uid-101"), RawJSON: `{}`},
	}
	if err := db.UpsertProducts(products); err != nil {
		t.Fatal(err)
	}

	csvBlob := []byte("Kirana Store,MG Road,\n" +
		"Item Description,Qty,Net Amt\n" +
		"Parle-G Biscuit 100g,10 pcs,110.50\n" +
		"Tata Salt 1kg,5,140\n" +
		"Total,,250.50\n")
	rawPath := filepath.Join(tmp, "fixture.csv")
	if err := os.WriteFile(rawPath, csvBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	rcpt, err := db.UpsertReceipt("file", "hash-fixture", "fixture.csv", "", "2026-08-30T00:00:00Z", "hash-fixture", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	res, err := proc.ProcessReceipt(rcpt)
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 2 {
		t.Fatalf("processed=%d", res.Processed)
	}

	updated, err := db.GetReceiptByID(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != "processed" {
		t.Fatalf("status=%s", updated.Status)
	}

	rows, err := db.GetExportRows(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("export rows=%d", len(rows))
	}
	for _, row := range rows {
		if row.UnitPrice == nil {
			t.Fatalf("missing unit price: %+v", row)
		}
		if row.DupStatus == string(internal.DuplicateNone) {
			t.Fatalf("fixture items exist in catalog: %+v", row)
		}
	}

	counts, err := db.GetLatestRunCounts(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts["totalsChecked"] != 1 || counts["totalsMismatched"] != 0 {
		t.Fatalf("printed total 250.50 matches the line sum: %+v", counts)
	}

	out := filepath.Join(tmp, "result.xlsx")
	if err := ExportRowsToXLSX(rows, out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatal(err)
	}
}

func TestProcessTotalMismatch(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	csvBlob := []byte("Item Description,Qty,Net Amt\n" +
		"Parle-G Biscuit 100g,10,110.50\n" +
		"Tata Salt 1kg,5,140\n" +
		"Total,,300.00\n")
	rawPath := filepath.Join(tmp, "short.csv")
	if err := os.WriteFile(rawPath, csvBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	rcpt, err := db.UpsertReceipt("file", "hash-short", "short.csv", "", "2026-08-30T00:00:00Z", "hash-short", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	if _, err := proc.ProcessReceipt(rcpt); err != nil {
		t.Fatal(err)
	}

	counts, err := db.GetLatestRunCounts(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts["totalsChecked"] != 1 || counts["totalsMismatched"] != 1 {
		t.Fatalf("printed total 300 is off by 49.50: %+v", counts)
	}
}

func TestProcessUnmappedReceipt(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	csvBlob := []byte("S.No,HSN\n1,1001\n")
	rawPath := filepath.Join(tmp, "opaque.csv")
	if err := os.WriteFile(rawPath, csvBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	rcpt, err := db.UpsertReceipt("file", "hash-opaque", "opaque.csv", "", "2026-08-30T00:00:00Z", "hash-opaque", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	proc := NewProcessingService(db, cfg)
	res, err := proc.ProcessReceipt(rcpt)
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed != 0 {
		t.Fatalf("processed=%d", res.Processed)
	}

	updated, err := db.GetReceiptByID(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != "unmapped" {
		t.Fatalf("status=%s", updated.Status)
	}

	decisions, err := db.ListMappingDecisions(rcpt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) == 0 {
		t.Fatal("mapping decisions must be recorded even when no header maps")
	}
}
