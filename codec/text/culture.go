package text

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// commaDecimalRegions are the language regions whose conventional decimal
// separator is a comma rather than a period (a small, pragmatic subset —
// enough to exercise culture-aware formatting without a full CLDR table).
var commaDecimalRegions = map[string]bool{
	"DE": true, "FR": true, "ES": true, "IT": true, "NL": true,
	"PT": true, "RU": true, "PL": true, "SE": true, "FI": true,
}

func decimalSeparator(culture string) byte {
	tag, err := language.Parse(culture)
	if err != nil {
		return '.'
	}
	region, _ := tag.Region()
	if commaDecimalRegions[region.String()] {
		return ','
	}
	return '.'
}

// formatFloat renders v's round-trip canonical form (strconv's shortest
// representation that reparses to the same bits), then substitutes in the
// culture's conventional decimal separator.
func formatFloat(culture string, v float64, bitSize int) string {
	canonical := strconv.FormatFloat(v, 'g', -1, bitSize)
	sep := decimalSeparator(culture)
	if sep == '.' {
		return canonical
	}
	return strings.Replace(canonical, ".", string(sep), 1)
}

// parseFloat is formatFloat's inverse: it normalizes the culture's decimal
// separator back to a period before delegating to strconv.
func parseFloat(culture, text string, bitSize int) (float64, error) {
	sep := decimalSeparator(culture)
	if sep != '.' {
		text = strings.Replace(text, string(sep), ".", 1)
	}
	return strconv.ParseFloat(text, bitSize)
}
