package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandsales/internal/dataprocessing"
	"brandsales/internal/shared/testutil"
)

func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Table(t *testing.T) {
	report := writeReport(t, "BusinessReport.csv", testutil.SampleReportCSV)

	code, stdout, stderr := runCLI(t, report)
	require.Equal(t, exitOK, code, stderr)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Brand")
	assert.Contains(t, lines[0], "Total Sales")
	assert.Contains(t, lines[1], "Theonia EU")
	assert.Contains(t, lines[1], "€1,340.00")
	assert.Contains(t, lines[4], "Other")
	assert.Contains(t, lines[6], "Total")
	assert.Contains(t, lines[6], "€1,445.00")
}

func TestRun_CSVToFile(t *testing.T) {
	report := writeReport(t, "BusinessReport.csv", testutil.SampleReportCSV)
	out := filepath.Join(t.TempDir(), "nested", "summary.csv")

	code, stdout, stderr := runCLI(t, "-format", "csv", "-out", out, report)
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffBrand,Consumer Sales,B2B Sales,Total Sales\n"+
		"Theonia EU,1240.00,100.00,1340.00\n"+
		"PupGrade EU,50.00,25.00,75.00\n"+
		"Cosy House EU,20.00,0.00,20.00\n"+
		"Other,10.00,0.00,10.00\n", string(data))

	code, stdout, stderr = runCLI(t, "-format", "csv", report)
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "Brand,"), "stdout has no byte order mark")
}

func TestRun_XLSX(t *testing.T) {
	report := writeReport(t, "BusinessReport.csv", testutil.SampleReportCSV)
	out := filepath.Join(t.TempDir(), "summary.xlsx")

	code, _, stderr := runCLI(t, "-format", "xlsx", "-out", out, report)
	require.Equal(t, exitOK, code, stderr)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	summary, err := dataprocessing.ReadReport(f, out)
	require.NoError(t, err)
	assert.Len(t, summary.Rows, 4)

	code, _, stderr = runCLI(t, "-format", "xlsx", report)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "xlsx output needs -out")
}

func TestRun_JSON(t *testing.T) {
	report := writeReport(t, "BusinessReport.csv", testutil.SampleReportCSV)

	code, stdout, stderr := runCLI(t, "-format", "json", report)
	require.Equal(t, exitOK, code, stderr)

	var result struct {
		Rows    int  `json:"rows"`
		HasB2B  bool `json:"has_b2b"`
		Summary []struct {
			Brand string `json:"brand"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 5, result.Rows)
	assert.True(t, result.HasB2B)
	assert.Len(t, result.Summary, 4)
}

func TestRun_RulesFile(t *testing.T) {
	report := writeReport(t, "BusinessReport.csv", testutil.SampleReportCSV)
	rules := writeReport(t, "brands.yaml", "brands:\n  - pattern: \"^EU-\"\n    label: \"Europe\"\n")

	code, stdout, stderr := runCLI(t, "-format", "csv", "-rules", rules, report)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Other,1250.00,100.00,1350.00")
	assert.Contains(t, stdout, "Europe,70.00,25.00,95.00")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantErr  string
	}{
		{
			name: "missing consumer column",
			args: func(t *testing.T) []string {
				return []string{writeReport(t, "r.csv", "SKU,Units Ordered\nTH_1,1\n")}
			},
			wantCode: exitError,
			wantErr:  "Error processing file: couldn't find 'Ordered Product Sales' column",
		},
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{filepath.Join(t.TempDir(), "absent.csv")}
			},
			wantCode: exitError,
			wantErr:  "Error processing file:",
		},
		{
			name: "unknown format",
			args: func(t *testing.T) []string {
				return []string{"-format", "pdf", writeReport(t, "r.csv", testutil.SampleReportCSV)}
			},
			wantCode: exitError,
			wantErr:  "unsupported export format",
		},
		{
			name:     "no report argument",
			args:     func(t *testing.T) []string { return nil },
			wantCode: exitUsage,
			wantErr:  "usage: brandreport",
		},
		{
			name:     "unknown flag",
			args:     func(t *testing.T) []string { return []string{"-nope"} },
			wantCode: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args(t)...)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr != "" {
				assert.Contains(t, stderr, tt.wantErr)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.NotEmpty(t, stdout)
}
