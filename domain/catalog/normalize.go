package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	newlineRun    = regexp.MustCompile(`[\r\n]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// NormalizeCell converts a raw cell value to its cleaned string form: nil and
// blank cells become "", newline runs become a single space, and whitespace
// runs collapse to one space. Numbers are rendered without a trailing ".0".
func NormalizeCell(v Cell) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprint(x)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = newlineRun.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
