package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format is a download format of the summary table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported download formats
var Formats = []string{string(FormatCSV), string(FormatXLSX)}

// ParseFormat maps a format name to a Format. Names are case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension of the format, with the leading dot
func (f Format) Extension() string {
	return "." + string(f)
}

// formatAmount formats an amount for CSV output with exactly 2 decimal places
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// MoneyFormatter renders amounts for people: a currency symbol followed by
// the amount with locale grouping and two decimals.
type MoneyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewMoneyFormatter creates a formatter for the given currency symbol and
// BCP 47 locale. Unknown locales fall back to English.
func NewMoneyFormatter(symbol, locale string) *MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &MoneyFormatter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// Format returns the display form of v, e.g. "€1,234.56"
func (m *MoneyFormatter) Format(v float64) string {
	return m.symbol + m.printer.Sprintf("%.2f", v)
}
