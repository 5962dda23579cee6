package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrency   = regexp.MustCompile(`(?i)(₹|rs\.?|inr)\s*`)
	reTrailer    = regexp.MustCompile(`/-\s*$`)
	reNumToken   = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	reUnitWords  = regexp.MustCompile(`(?i)\b(pcs?|pieces?|nos?|units?|pkts?|boxe?s?|doz(en)?|kgs?|gms?|g|ml|ltrs?|l)\b\.?`)
	reGroupDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reGroupComma = regexp.MustCompile(`^\d{1,3}(?:,\d{2,3})+$`)
)

// ParseAmount pulls a monetary value out of a receipt cell. It tolerates
// currency markers and both western (1,234.50) and Indian (1,23,456.78)
// digit grouping. Returns nil when no numeric token is present.
func ParseAmount(input string) *float64 {
	cell := strings.ReplaceAll(input, " ", " ")
	cell = reCurrency.ReplaceAllString(cell, "")
	cell = reTrailer.ReplaceAllString(cell, "")

	token := reNumToken.FindString(cell)
	if token == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(normalizeAmountToken(token), 64)
	if err != nil {
		return nil
	}
	return FloatPtr(parsed)
}

// ParseQtyCell parses a quantity cell, ignoring unit words like "10 pcs".
func ParseQtyCell(input string) *float64 {
	return ParseAmount(reUnitWords.ReplaceAllString(input, " "))
}

func normalizeAmountToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if reGroupDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if reGroupComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
