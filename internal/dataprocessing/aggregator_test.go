package dataprocessing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandsales/internal/shared/testutil"
	"brandsales/pkg/contracts/domain"
)

func newDefaultAggregator(t *testing.T) (*Aggregator, *testutil.BufferedSlogHandler) {
	t.Helper()

	classifier, err := NewBrandClassifier(DefaultBrandRules())
	require.NoError(t, err)

	logger, logs := testutil.NewTestLogger(t)
	return NewAggregator(classifier, logger), logs
}

func TestAggregator_EndToEnd(t *testing.T) {
	agg, logs := newDefaultAggregator(t)

	summary, err := agg.Aggregate(context.Background(), testutil.SampleReport())
	require.NoError(t, err)

	assert.Equal(t, testutil.SampleSummary(), summary)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "report aggregated")
	testutil.AssertLogAttr(t, logs, "component", "aggregator")
}

func TestAggregator_FromCSV(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	report, err := ReadCSV(strings.NewReader(testutil.SampleReportCSV))
	require.NoError(t, err)

	result, err := agg.Summarize(context.Background(), report)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Rows)
	assert.True(t, result.Columns.HasB2B)
	assert.Equal(t, "Ordered Product Sales – B2B", result.Columns.B2B)

	require.Len(t, result.Summary, 4)
	assert.Equal(t, "Theonia EU", result.Summary[0].Brand)
	assert.InDelta(t, 1240.00, result.Summary[0].ConsumerSales, 1e-9)
	assert.InDelta(t, 100.00, result.Summary[0].B2BSales, 1e-9)
	assert.Equal(t, "PupGrade EU", result.Summary[1].Brand)
	assert.Equal(t, 75.0, result.Summary[1].TotalSales)
	assert.Equal(t, "Cosy House EU", result.Summary[2].Brand)
	assert.Equal(t, 20.0, result.Summary[2].TotalSales)
	assert.Equal(t, "Other", result.Summary[3].Brand)
	assert.Equal(t, 10.0, result.Summary[3].TotalSales)
}

func TestAggregator_WithoutB2BColumn(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	report := &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales"},
		Rows: []domain.Row{
			{domain.TextCell("TH_1"), domain.NumericCell(30)},
			{domain.TextCell("TH_2"), domain.TextCell("€12.00")},
		},
	}

	summary, err := agg.Aggregate(context.Background(), report)
	require.NoError(t, err)

	require.Len(t, summary, 1)
	assert.Equal(t, domain.BrandSummary{Brand: "Theonia EU", ConsumerSales: 42, B2BSales: 0, TotalSales: 42}, summary[0])
}

func TestAggregator_Invariants(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	report, err := ReadCSV(strings.NewReader(testutil.SampleReportCSV))
	require.NoError(t, err)

	summary, err := agg.Aggregate(context.Background(), report)
	require.NoError(t, err)

	cols, err := ResolveSalesColumns(report.Columns)
	require.NoError(t, err)

	var rowTotal float64
	for i := range report.Rows {
		rowTotal += ParseMoney(report.Cell(i, cols.ConsumerIndex)) + ParseMoney(report.Cell(i, cols.B2BIndex))
	}

	seen := make(map[string]bool)
	var summaryTotal float64
	for i, row := range summary {
		assert.False(t, seen[row.Brand], "brand %q appears twice", row.Brand)
		seen[row.Brand] = true

		assert.Equal(t, row.ConsumerSales+row.B2BSales, row.TotalSales)
		if i > 0 {
			assert.GreaterOrEqual(t, summary[i-1].TotalSales, row.TotalSales)
		}
		summaryTotal += row.TotalSales
	}
	assert.InDelta(t, rowTotal, summaryTotal, 1e-6)

	grand := GrandTotals(summary)
	assert.Equal(t, "Total", grand.Brand)
	assert.InDelta(t, summaryTotal, grand.TotalSales, 1e-6)
}

func TestAggregator_Idempotent(t *testing.T) {
	agg, _ := newDefaultAggregator(t)
	input := []byte(testutil.SampleReportCSV)

	summarize := func() []domain.BrandSummary {
		report, err := ReadReport(bytes.NewReader(input), "BusinessReport.csv")
		require.NoError(t, err)
		summary, err := agg.Aggregate(context.Background(), report)
		require.NoError(t, err)
		return summary
	}

	first := summarize()
	second := summarize()

	assert.Equal(t, first, second)
	require.Len(t, first, 4)
	assert.Equal(t, "Theonia EU", first[0].Brand)
	assert.InDelta(t, 1340.0, first[0].TotalSales, 1e-9)
}

func TestAggregator_TiesKeepFirstSeenOrder(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	report := &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales"},
		Rows: []domain.Row{
			{domain.TextCell("EU-PC-B-1"), domain.NumericCell(5)},
			{domain.TextCell("XYZ"), domain.NumericCell(5)},
			{domain.TextCell("TH_1"), domain.NumericCell(5)},
		},
	}

	summary, err := agg.Aggregate(context.Background(), report)
	require.NoError(t, err)

	brands := make([]string, 0, len(summary))
	for _, row := range summary {
		brands = append(brands, row.Brand)
	}
	assert.Equal(t, []string{"Cosy House EU", "Other", "Theonia EU"}, brands)
}

func TestAggregator_EmptyReport(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	summary, err := agg.Aggregate(context.Background(), &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales"},
	})
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestAggregator_AbsentSKUIsOther(t *testing.T) {
	agg, _ := newDefaultAggregator(t)

	summary, err := agg.Aggregate(context.Background(), &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales"},
		Rows:    []domain.Row{{domain.AbsentCell(), domain.NumericCell(7)}},
	})
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, FallbackBrand, summary[0].Brand)
}

func TestAggregator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "missing consumer column",
			columns: []string{"SKU", "Units Ordered"},
			check: func(t *testing.T, err error) {
				var missing *MissingColumnError
				assert.True(t, errors.As(err, &missing))
			},
		},
		{
			name:    "missing SKU column",
			columns: []string{"Seller SKU", "Ordered Product Sales"},
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, "SKU", missing.Field)
			},
		},
		{
			name:    "SKU match is case-sensitive",
			columns: []string{"sku", "Ordered Product Sales"},
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				assert.True(t, errors.As(err, &missing))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, logs := newDefaultAggregator(t)

			summary, err := agg.Aggregate(context.Background(), &domain.Report{Columns: tt.columns})
			require.Error(t, err)
			assert.Nil(t, summary)
			tt.check(t, err)
			assert.NotEmpty(t, logs.GetRecordsByLevel(slog.LevelWarn))
		})
	}
}

type stubClassifier map[string]string

func (s stubClassifier) Classify(sku string) string {
	if brand, ok := s[sku]; ok {
		return brand
	}
	return FallbackBrand
}

func TestAggregator_UsesInjectedClassifier(t *testing.T) {
	agg := NewAggregator(stubClassifier{"A": "Alpha"}, nil)

	summary, err := agg.Aggregate(context.Background(), &domain.Report{
		Columns: []string{"SKU", "Ordered Product Sales"},
		Rows: []domain.Row{
			{domain.TextCell("A"), domain.NumericCell(1)},
			{domain.TextCell("B"), domain.NumericCell(2)},
		},
	})
	require.NoError(t, err)

	require.Len(t, summary, 2)
	assert.Equal(t, "Other", summary[0].Brand)
	assert.Equal(t, "Alpha", summary[1].Brand)
}
