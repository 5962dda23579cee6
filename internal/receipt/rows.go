package receipt

import (
	"strings"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

// LineItem is one parsed data row of a mapped receipt table.
type LineItem struct {
	LineNo      int
	RawCells    []string
	RawLine     string
	Name        string
	Qty         *float64
	NetAmount   *float64
	MRP         *float64
	GrossAmount *float64
	// Amount is the value of the chosen price column, the input to the
	// unit price derivation.
	Amount     *float64
	UnitPrice  *float64
	PriceError PriceError
}

var summaryRowNames = map[string]struct{}{
	"total":       {},
	"sub total":   {},
	"subtotal":    {},
	"grand total": {},
	"net total":   {},
}

// ParseRows extracts line items from the data rows of a table whose header
// row already mapped successfully. Rows without a product name and summary
// rows (totals) are dropped; rows whose unit price cannot be derived are
// kept with PriceError set so the caller can flag them for review.
func ParseRows(result MapResult, rows [][]string) []LineItem {
	if !result.Success {
		return nil
	}

	nameIdx := result.Mapping[FieldProductName]
	qtyIdx := result.Mapping[FieldQuantity]

	out := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		cells := trimCells(row)
		if allEmpty(cells) {
			continue
		}

		name := cellAt(cells, nameIdx)
		if name == "" {
			continue
		}
		if _, summary := summaryRowNames[strings.ToLower(name)]; summary {
			continue
		}

		item := LineItem{
			LineNo:   len(out) + 1,
			RawCells: cells,
			RawLine:  strings.Join(cells, " | "),
			Name:     name,
			Qty:      util.ParseQtyCell(cellAt(cells, qtyIdx)),
			Amount:   util.ParseAmount(cellAt(cells, result.PriceColumnIndex)),
		}
		if idx, ok := result.Mapping[FieldNetAmount]; ok {
			item.NetAmount = util.ParseAmount(cellAt(cells, idx))
		}
		if idx, ok := result.Mapping[FieldMRP]; ok {
			item.MRP = util.ParseAmount(cellAt(cells, idx))
		}
		if idx, ok := result.Mapping[FieldGrossAmount]; ok {
			item.GrossAmount = util.ParseAmount(cellAt(cells, idx))
		}

		price := CalculateUnitPrice(item.Amount, item.Qty)
		if price.Success {
			item.UnitPrice = price.UnitPrice
		} else {
			item.PriceError = price.Error
		}

		out = append(out, item)
	}
	return out
}

// PrintedTotal pulls the receipt's own total out of the summary rows that
// ParseRows drops. The last summary row wins, as the grand total prints
// below any subtotals. Nil when the receipt carries no summary row or its
// price cell is not numeric.
func PrintedTotal(result MapResult, rows [][]string) *float64 {
	if !result.Success {
		return nil
	}

	nameIdx := result.Mapping[FieldProductName]
	var printed *float64
	for _, row := range rows {
		cells := trimCells(row)
		name := cellAt(cells, nameIdx)
		if _, summary := summaryRowNames[strings.ToLower(name)]; !summary {
			continue
		}
		if amount := util.ParseAmount(cellAt(cells, result.PriceColumnIndex)); amount != nil {
			printed = amount
		}
	}
	return printed
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func cellAt(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return cells[idx]
	}
	return ""
}
