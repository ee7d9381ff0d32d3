package substitute

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numeric = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// FormatNumber renders a cell holding only a number with thousands
// separators and one decimal place: "1000.56" becomes "1,000.6". Any other
// text is returned unchanged.
func FormatNumber(s string) string {
	t := strings.TrimSpace(s)
	if !numeric.MatchString(t) {
		return s
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return s
	}
	return message.NewPrinter(language.English).Sprintf("%.1f", v)
}
