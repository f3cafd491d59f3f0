package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"brandsales/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV writes a header and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SummaryRecords converts summary rows to CSV records in table column order
func SummaryRecords(summary []domain.BrandSummary) [][]string {
	records := make([][]string, 0, len(summary))
	for _, row := range summary {
		records = append(records, []string{
			row.Brand,
			formatAmount(row.ConsumerSales),
			formatAmount(row.B2BSales),
			formatAmount(row.TotalSales),
		})
	}
	return records
}

// WriteSummaryCSV writes the summary table as CSV without a byte order mark
func WriteSummaryCSV(w io.Writer, summary []domain.BrandSummary) error {
	return WriteCSV(w, WriteOptions{
		Headers: domain.SummaryHeader,
		Records: SummaryRecords(summary),
	})
}

// WriteSummaryCSVWithBOM is WriteSummaryCSV prefixed with a UTF-8 byte order
// mark
func WriteSummaryCSVWithBOM(w io.Writer, summary []domain.BrandSummary) error {
	return WriteCSV(w, WriteOptions{
		Headers:   domain.SummaryHeader,
		Records:   SummaryRecords(summary),
		BOMPrefix: true,
	})
}
