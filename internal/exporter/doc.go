// Package exporter renders brand sales summaries for download and display.
//
// The summary table always has the columns Brand, Consumer Sales, B2B Sales
// and Total Sales, in that order. CSV exports write amounts with two decimals;
// XLSX exports keep them numeric with a "#,##0.00" number format.
//
// Example usage:
//
//	format, err := exporter.ParseFormat("xlsx")
//	if err != nil {
//		return err
//	}
//	err = exporter.Export(w, format, summary)
//
// MoneyFormatter produces the display form used on the upload page, such as
// "€1,234.56".
package exporter
