package dataprocessing

import (
	"strconv"
	"strings"

	"brandsales/pkg/contracts/domain"
)

// ParseMoney converts a report cell into an amount.
//
// Numeric cells are returned unchanged. Text cells keep only ASCII digits and
// '.', so currency symbols and thousands separators vanish:
//
//	"€1,234.56" -> 1234.56
//	"$0.00"     -> 0
//
// Absent cells, text with no digits, and text that still is not a number after
// stripping all read as 0. Commas are always dropped, so a decimal comma
// ("1.234,56") is not understood.
func ParseMoney(c domain.Cell) float64 {
	switch c.Kind {
	case domain.CellNumeric:
		return c.Number
	case domain.CellText:
		return parseMoneyText(c.Text)
	default:
		return 0.0
	}
}

func parseMoneyText(s string) float64 {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if clean == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0.0
	}
	return v
}
