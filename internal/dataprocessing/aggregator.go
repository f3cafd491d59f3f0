package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"brandsales/pkg/contracts/domain"
)

// Classifier maps a SKU to a brand label
type Classifier interface {
	Classify(sku string) string
}

// Aggregator produces the brand sales summary of a report
type Aggregator struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewAggregator creates an aggregator that classifies SKUs with classifier
func NewAggregator(classifier Classifier, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		classifier: classifier,
		logger:     logger.With(slog.String("component", "aggregator")),
	}
}

// brandTotals accumulates one brand while rows are scanned
type brandTotals struct {
	brand    string
	consumer float64
	b2b      float64
}

// Aggregation is the outcome of one aggregation pass
type Aggregation struct {
	Columns SalesColumns
	Rows    int
	Summary []domain.BrandSummary
}

// Aggregate groups the report rows by brand and returns one summary row per
// brand, sorted by total sales descending. Brands with equal totals keep the
// order in which they first appear in the report.
//
// The whole report fails on the first resolution error; no rows are skipped.
func (a *Aggregator) Aggregate(ctx context.Context, report *domain.Report) ([]domain.BrandSummary, error) {
	result, err := a.Summarize(ctx, report)
	if err != nil {
		return nil, err
	}
	return result.Summary, nil
}

// Summarize is Aggregate that also reports the resolved columns and row count
func (a *Aggregator) Summarize(ctx context.Context, report *domain.Report) (*Aggregation, error) {
	cols, err := ResolveSalesColumns(report.Columns)
	if err != nil {
		a.logger.WarnContext(ctx, "sales column resolution failed",
			slog.Any("columns", report.Columns),
			slog.String("error", err.Error()))
		return nil, err
	}

	skuIndex := report.ColumnIndex(SKUColumn)
	if skuIndex < 0 {
		err := &MissingFieldError{Field: SKUColumn}
		a.logger.WarnContext(ctx, "SKU column missing",
			slog.Any("columns", report.Columns))
		return nil, err
	}

	a.logger.DebugContext(ctx, "sales columns resolved",
		slog.String("consumer_column", cols.Consumer),
		slog.String("b2b_column", cols.B2B),
		slog.Bool("has_b2b", cols.HasB2B))

	groups := make(map[string]*brandTotals)
	order := make([]*brandTotals, 0)

	for i := range report.Rows {
		consumer := ParseMoney(report.Cell(i, cols.ConsumerIndex))
		b2b := 0.0
		if cols.HasB2B {
			b2b = ParseMoney(report.Cell(i, cols.B2BIndex))
		}

		brand := a.classifier.Classify(report.Cell(i, skuIndex).String())

		totals, ok := groups[brand]
		if !ok {
			totals = &brandTotals{brand: brand}
			groups[brand] = totals
			order = append(order, totals)
		}
		totals.consumer += consumer
		totals.b2b += b2b
	}

	summary := make([]domain.BrandSummary, 0, len(order))
	for _, totals := range order {
		summary = append(summary, domain.BrandSummary{
			Brand:         totals.brand,
			ConsumerSales: totals.consumer,
			B2BSales:      totals.b2b,
			TotalSales:    totals.consumer + totals.b2b,
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].TotalSales > summary[j].TotalSales
	})

	a.logger.InfoContext(ctx, "report aggregated",
		slog.Int("rows", len(report.Rows)),
		slog.Int("brands", len(summary)))

	return &Aggregation{Columns: cols, Rows: len(report.Rows), Summary: summary}, nil
}

// GrandTotals sums a summary into a single row labelled "Total"
func GrandTotals(summary []domain.BrandSummary) domain.BrandSummary {
	total := domain.BrandSummary{Brand: "Total"}
	for _, row := range summary {
		total.ConsumerSales += row.ConsumerSales
		total.B2BSales += row.B2BSales
	}
	total.TotalSales = total.ConsumerSales + total.B2BSales
	return total
}
