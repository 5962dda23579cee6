package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
)

// TableData is one raw table candidate pulled out of a receipt document:
// an untyped cell grid plus where it came from. Header detection and
// column mapping happen later.
type TableData struct {
	Source internal.ReceiptSource
	Grid   [][]string
	Meta   map[string]any
}

var (
	reColumnSplit = regexp.MustCompile(`\s{2,}|\t+|\s*\|\s*`)
	reWhitespace  = regexp.MustCompile(`\s+`)
)

// ExtractTablesFromFile reads a receipt file by extension. Callers route
// .eml files through ExtractTablesFromEmailRaw instead.
func ExtractTablesFromFile(path string, content []byte) ([]TableData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSVTables(content)
	case ".xlsx", ".xls":
		return parseXLSXTables(content)
	case ".pdf":
		return parsePDFTables(content)
	case ".html", ".htm":
		return parseHTMLTables(string(content)), nil
	default:
		return nil, fmt.Errorf("unsupported receipt file type: %s", filepath.Ext(path))
	}
}

// ExtractTablesFromEmailRaw parses a raw RFC 822 message: tables come from
// the text body, HTML tables and any CSV/XLSX/PDF attachments. Both bodies
// are returned so the receipt detector scores the same content the
// extraction saw.
func ExtractTablesFromEmailRaw(raw []byte) ([]TableData, string, string, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", "", "", nil, err
	}

	tables := make([]TableData, 0)
	if env.Text != "" {
		tables = append(tables, parseTextTables(env.Text)...)
	}
	if env.HTML != "" {
		tables = append(tables, parseHTMLTables(env.HTML)...)
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)

		extra, err := ExtractTablesFromFile(filename, att.Content)
		if err != nil {
			continue
		}
		for i := range extra {
			if extra[i].Meta == nil {
				extra[i].Meta = map[string]any{}
			}
			extra[i].Meta["attachment"] = filename
		}
		tables = append(tables, extra...)
	}

	return tables, env.GetHeader("Subject"), env.Text, env.HTML, attachmentNames, nil
}

func parseCSVTables(content []byte) ([]TableData, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	return []TableData{{Source: internal.SourceCSV, Grid: records}}, nil
}

func parseXLSXTables(content []byte) ([]TableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []TableData{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}
		out = append(out, TableData{
			Source: internal.SourceXLSX,
			Grid:   rows,
			Meta:   map[string]any{"sheet": sheet},
		})
	}

	return out, nil
}

func parseHTMLTables(html string) []TableData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []TableData{}
	doc.Find("table").Each(func(tableNo int, table *goquery.Selection) {
		grid := [][]string{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			if len(cells) > 0 {
				grid = append(grid, cells)
			}
		})
		if len(grid) < 2 {
			return
		}
		out = append(out, TableData{
			Source: internal.SourceEmailHTMLTable,
			Grid:   grid,
			Meta:   map[string]any{"tableNo": tableNo},
		})
	})

	return out
}

func parsePDFTables(content []byte) ([]TableData, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []TableData{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if table := textToTable(internal.SourcePDF, text); table != nil {
			table.Meta = map[string]any{"page": i}
			out = append(out, *table)
		}
	}
	return out, nil
}

func parseTextTables(text string) []TableData {
	if table := textToTable(internal.SourceEmailText, text); table != nil {
		return []TableData{*table}
	}
	return nil
}

// textToTable turns loosely aligned plain text into a cell grid by
// splitting lines on runs of whitespace or pipe separators. Lines that do
// not produce at least two columns are dropped; fewer than two surviving
// lines means no table.
func textToTable(source internal.ReceiptSource, text string) *TableData {
	grid := [][]string{}
	for _, line := range splitLines(text) {
		cells := reColumnSplit.Split(line, -1)
		cleaned := make([]string, 0, len(cells))
		for _, c := range cells {
			c = strings.TrimSpace(c)
			if c != "" {
				cleaned = append(cleaned, c)
			}
		}
		if len(cleaned) >= 2 {
			grid = append(grid, cleaned)
		}
	}
	if len(grid) < 2 {
		return nil
	}
	return &TableData{Source: source, Grid: grid}
}

// FindHeaderRow locates the header row inside a raw grid: the first of the
// leading rows whose columns map successfully. Receipts often carry store
// name and date lines above the table, so a few preamble rows are probed.
// When nothing maps the decisions of the first candidate row are returned
// so callers can still surface a diagnostic log.
func FindHeaderRow(grid [][]string) (int, receipt.MapResult) {
	const maxProbe = 6

	firstCandidate := -1
	var firstResult receipt.MapResult
	probed := 0
	for i, row := range grid {
		if probed >= maxProbe {
			break
		}
		if allCellsEmpty(row) {
			continue
		}
		probed++
		result := receipt.MapColumns(row)
		if result.Success {
			return i, result
		}
		if firstCandidate < 0 {
			firstCandidate = i
			firstResult = result
		}
	}

	return -1, firstResult
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func allCellsEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(input, " "))
}
