package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"brandsales/pkg/contracts/domain"
)

// SampleReportCSV is a small seller report covering every default brand, a
// missing B2B amount and an unmatched SKU.
const SampleReportCSV = "(Parent) ASIN,SKU,Units Ordered,Ordered Product Sales,Ordered Product Sales – B2B\n" +
	"B000000001,TH_001,4,\"€1,234.56\",€100.00\n" +
	"B000000002,EU-PG-55,2,€50.00,€25.00\n" +
	"B000000003,EU-PC-B-9,1,€20.00,\n" +
	"B000000004,XYZ-1,1,€10.00,€0.00\n" +
	"B000000005,TH_002,1,€5.44,\n"

// SampleReport returns the report from the end-to-end aggregation scenario:
// Theonia EU 100, PupGrade EU 50 + 25 B2B, Other 10.
func SampleReport() *domain.Report {
	return &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales", "Ordered Product Sales – B2B"},
		Rows: []domain.Row{
			{domain.TextCell("TH_1"), domain.TextCell("€100.00"), domain.TextCell("€0.00")},
			{domain.TextCell("EU-PG-2"), domain.TextCell("€50.00"), domain.TextCell("€25.00")},
			{domain.TextCell("ZZZ"), domain.TextCell("€10.00"), domain.AbsentCell()},
		},
	}
}

// SampleSummary is the aggregation of SampleReport
func SampleSummary() []domain.BrandSummary {
	return []domain.BrandSummary{
		{Brand: "Theonia EU", ConsumerSales: 100, B2BSales: 0, TotalSales: 100},
		{Brand: "PupGrade EU", ConsumerSales: 50, B2BSales: 25, TotalSales: 75},
		{Brand: "Other", ConsumerSales: 10, B2BSales: 0, TotalSales: 10},
	}
}

// BuildCSV renders a header and records as CSV bytes
func BuildCSV(t *testing.T, header []string, records ...[]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write records: %v", err)
	}
	return buf.Bytes()
}
