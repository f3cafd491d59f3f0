package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"brandsales/pkg/contracts/domain"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte{'P', 'K', 0x03, 0x04}

	// ErrEmptyReport is wrapped by a ParseError when the input has no header row
	ErrEmptyReport = errors.New("no columns to parse from file")
)

// ReadReport reads a complete report from r. XLSX workbooks are recognised by
// file extension or by their zip signature; anything else is read as CSV.
func ReadReport(r io.Reader, filename string) (*domain.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read input: %w", err)}
	}

	if isWorkbook(data, filename) {
		return ReadXLSX(bytes.NewReader(data))
	}
	return ReadCSV(bytes.NewReader(data))
}

func isWorkbook(data []byte, filename string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return true
	}
	return bytes.HasPrefix(data, zipMagic)
}

// ReadCSV parses comma separated text with a header row.
//
// Blank lines are skipped and a UTF-8 byte order mark is removed. Rows shorter
// than the header are padded with absent cells; longer rows are a ParseError.
func ReadCSV(r io.Reader) (*domain.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read input: %w", err)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Err: errors.New("input is not valid UTF-8 text")}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: ErrEmptyReport}
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	report := &domain.Report{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
			}
		}
		report.Rows = append(report.Rows, buildRow(record, len(header)))
	}

	slog.Debug("CSV report parsed",
		slog.Int("columns", len(report.Columns)),
		slog.Int("rows", len(report.Rows)))

	return report, nil
}

func csvParseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Err: perr.Err}
	}
	return &ParseError{Err: err}
}

// ReadXLSX parses the first worksheet of a workbook. The first non-empty row
// is the header.
func ReadXLSX(r io.Reader) (*domain.Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: ErrEmptyReport}
	}

	// Stored values, not display text: number formats round and reformat
	// negatives as "(250.75)"
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}

	headerRow := -1
	for i, row := range rows {
		if !isBlankRecord(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, &ParseError{Err: ErrEmptyReport}
	}

	header := rows[headerRow]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}
	report := &domain.Report{Columns: header}

	for i := headerRow + 1; i < len(rows); i++ {
		if isBlankRecord(rows[i]) {
			continue
		}
		record := rows[i]
		if len(record) > len(header) {
			// Trailing empty cells beyond the header are formatting leftovers
			if !isBlankRecord(record[len(header):]) {
				return nil, &ParseError{
					Line: i + 1,
					Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
				}
			}
			record = record[:len(header)]
		}
		report.Rows = append(report.Rows, buildRow(record, len(header)))
	}

	slog.Debug("XLSX report parsed",
		slog.String("sheet", sheets[0]),
		slog.Int("columns", len(report.Columns)),
		slog.Int("rows", len(report.Rows)))

	return report, nil
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// buildRow converts raw fields into typed cells, padding to width
func buildRow(record []string, width int) domain.Row {
	row := make(domain.Row, width)
	for i := range row {
		if i < len(record) {
			row[i] = inferCell(record[i])
		} else {
			row[i] = domain.AbsentCell()
		}
	}
	return row
}

// inferCell types a raw field: empty is absent, a plain decimal number is
// numeric, everything else is text.
func inferCell(raw string) domain.Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.AbsentCell()
	}
	if isPlainNumber(trimmed) {
		if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return domain.Cell{Kind: domain.CellNumeric, Number: v, Text: raw}
		}
	}
	return domain.TextCell(raw)
}

// isPlainNumber accepts an optional sign, digits, an optional fraction and an
// optional exponent. ParseFloat alone would also take "NaN", "Inf" and hex.
func isPlainNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
