package textutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount reads a scraped price into a number. Handles both
// english and Quebec french renderings: "$9.99", "9.99", "9,99 $",
// "1 049,99 $".
func ParseAmount(s string) (float64, error) {
	s = CollapseWhitespace(s)
	s = strings.Trim(s, "$CAD ")

	// french prices use "," as the decimal separator and spaces for
	// thousands; english uses "." and ","
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	s = strings.ReplaceAll(s, " ", "")

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return amount, nil
}
