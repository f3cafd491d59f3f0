// Package dataprocessing turns an uploaded sales report into a brand-level
// sales summary.
//
// # Architecture
//
// The package is organized into four components:
//
//  1. Parser: reads CSV or XLSX report bytes into a domain.Report of typed cells
//  2. Column resolver: finds the consumer and B2B sales columns by header name
//  3. Money parser and brand classifier: normalize amounts and map SKUs to brands
//  4. Aggregator: groups rows by brand and sorts the totals
//
// # Usage
//
//	report, err := dataprocessing.ReadReport(file, "BusinessReport.csv")
//	if err != nil {
//	    return err
//	}
//	classifier, err := dataprocessing.NewBrandClassifier(rules)
//	if err != nil {
//	    return err
//	}
//	aggregator := dataprocessing.NewAggregator(classifier, logger)
//	summary, err := aggregator.Aggregate(ctx, report)
//
// # Data Flow
//
//	bytes → Parser → Report → ResolveSalesColumns → ParseMoney / Classify → BrandSummary rows
//
// # Error Handling
//
// Failures are fatal for the whole report; there is no partial output:
//
//   - *ParseError when the input is not readable tabular text
//   - *MissingColumnError when "Ordered Product Sales" is absent
//   - *MissingFieldError when the SKU column is absent
//
// Malformed monetary cells are not errors. They count as zero.
package dataprocessing
