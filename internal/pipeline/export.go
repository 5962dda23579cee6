package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
)

// ExportRowsToXLSX writes a review sheet: one row per parsed line item with
// its derived price and duplicate verdict, ordered duplicates first.
func ExportRowsToXLSX(rows []internal.LineExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line_no", "source", "raw_line", "item_name", "qty",
		"net_amount", "mrp", "gross_amount", "unit_price", "price_error",
		"dup_status", "dup_confidence", "dup_reason",
		"product_id", "product_remote_uid", "product_name", "product_barcode",
		"candidate2_name", "candidate2_score",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.LineNo)
		set(2, row.Source)
		set(3, row.RawLine)
		set(4, derefString(row.ItemName))
		set(5, derefFloat(row.Qty))
		set(6, derefFloat(row.NetAmount))
		set(7, derefFloat(row.MRP))
		set(8, derefFloat(row.GrossAmount))
		set(9, derefFloat(row.UnitPrice))
		set(10, derefString(row.PriceError))
		set(11, row.DupStatus)
		set(12, row.DupConfidence)
		set(13, row.DupReason)
		set(14, derefInt(row.ProductID))
		set(15, derefString(row.ProductRemoteUID))
		set(16, derefString(row.ProductName))
		set(17, derefString(row.ProductBarcode))
		set(18, derefString(row.Candidate2Name))
		set(19, derefFloat(row.Candidate2Score))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
