package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"brandsales/pkg/contracts/domain"
)

// SummarySheet is the worksheet name of XLSX exports
const SummarySheet = "Brand Summary"

// amountNumFmt is the built-in "#,##0.00" number format
const amountNumFmt = 4

// WriteSummaryXLSX writes the summary table as a single sheet workbook.
// Amounts stay numeric so they can be summed in a spreadsheet.
func WriteSummaryXLSX(w io.Writer, summary []domain.BrandSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(domain.SummaryHeader))
	for i, name := range domain.SummaryHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Brand, row.ConsumerSales, row.B2BSales, row.TotalSales}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := styleSummarySheet(f, len(summary)); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func styleSummarySheet(f *excelize.File, rows int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	if rows > 0 {
		amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
		if err != nil {
			return fmt.Errorf("create amount style: %w", err)
		}
		last := fmt.Sprintf("D%d", rows+1)
		if err := f.SetCellStyle(SummarySheet, "B2", last, amountStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "D", 16)
}

// Export writes the summary in the given format
func Export(w io.Writer, format Format, summary []domain.BrandSummary) error {
	switch format {
	case FormatCSV:
		return WriteSummaryCSV(w, summary)
	case FormatXLSX:
		return WriteSummaryXLSX(w, summary)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
