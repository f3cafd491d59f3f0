package dataprocessing

import (
	"regexp"
	"strings"
)

const (
	// ConsumerSalesColumn is the header of the consumer channel sales column
	ConsumerSalesColumn = "Ordered Product Sales"
	// SKUColumn is the exact, case-sensitive header of the SKU column
	SKUColumn = "SKU"
)

// b2bColumnPattern accepts "ordered product sales – b2b" and the hyphen form,
// with any spacing around the dash. It is applied to the trimmed, lowercased name.
var b2bColumnPattern = regexp.MustCompile(`(?i)^ordered product sales[\s\p{Z}]*[–-][\s\p{Z}]*b2b`)

// SalesColumns holds the resolved positions of the sales columns in a header
type SalesColumns struct {
	Consumer      string
	ConsumerIndex int

	// HasB2B is false when the report carries no B2B column; B2B sales then
	// count as zero.
	HasB2B   bool
	B2B      string
	B2BIndex int
}

// ResolveSalesColumns locates the consumer and B2B sales columns.
// Names are compared after trimming and lowercasing. When several columns match
// the same role the last one in header order is used.
func ResolveSalesColumns(columns []string) (SalesColumns, error) {
	resolved := SalesColumns{ConsumerIndex: -1, B2BIndex: -1}

	for i, col := range columns {
		name := strings.ToLower(strings.TrimSpace(col))
		if name == "ordered product sales" {
			resolved.Consumer = col
			resolved.ConsumerIndex = i
		}
		if b2bColumnPattern.MatchString(name) {
			resolved.B2B = col
			resolved.B2BIndex = i
			resolved.HasB2B = true
		}
	}

	if resolved.ConsumerIndex < 0 {
		return SalesColumns{}, &MissingColumnError{Column: ConsumerSalesColumn}
	}
	return resolved, nil
}
