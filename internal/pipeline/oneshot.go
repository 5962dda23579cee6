package pipeline

import (
	"fmt"
	"os"
)

// ExtractTablesFromInput powers one-off runs against a local file without
// going through the receipts table.
func ExtractTablesFromInput(inputType string, inputPath string) ([]TableData, error) {
	blob, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	switch inputType {
	case "csv", "xlsx", "pdf", "html":
		return ExtractTablesFromFile("input."+inputType, blob)
	case "eml":
		tables, _, _, _, _, err := ExtractTablesFromEmailRaw(blob)
		return tables, err
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}
