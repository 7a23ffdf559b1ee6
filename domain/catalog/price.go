package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// maxPriceDigits truncates absurdly long digit strings coming from corrupted
// cells before parsing.
const maxPriceDigits = 12

// Locale patterns, tried in order. Dot-grouped digits are the Indonesian
// thousands notation ("47.080.000"), a lone comma is a decimal point.
var (
	currencyMarker   = regexp.MustCompile(`(?i)rp|idr|\s`)
	dotThousands     = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
	commaDecimal     = regexp.MustCompile(`^\d+(,\d+)?$`)
	plainNumber      = regexp.MustCompile(`^\d+(\.\d+)?$`)
	trailingFraction = regexp.MustCompile(`,\d+$`)
	nonDigit         = regexp.MustCompile(`[^\d]`)
)

// ParsePrice converts a cell value of unknown locale into an integer amount
// in the smallest currency unit. Native numbers pass through (floats rounded
// to nearest). Strings run an ordered matcher chain; anything without
// extractable digits reports false rather than an error.
func ParsePrice(v Cell) (int64, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(math.Round(x)), true
	case float32:
		return int64(math.Round(float64(x))), true
	case string:
		s = x
	default:
		s = NormalizeCell(v)
	}

	s = currencyMarker.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return 0, false
	}

	switch {
	case dotThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = trailingFraction.ReplaceAllString(s, "")
	case commaDecimal.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case plainNumber.MatchString(s):
		// already parseable
	default:
		s = nonDigit.ReplaceAllString(s, "")
	}

	if s == "" {
		return 0, false
	}
	if len(s) > maxPriceDigits {
		s = s[:maxPriceDigits]
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int64(math.Round(f)), true
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
