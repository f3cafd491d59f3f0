package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"brandsales/internal/config"
	"brandsales/internal/dataprocessing"
	"brandsales/internal/exporter"
	"brandsales/internal/infrastructure"
	"brandsales/internal/services"
	"brandsales/internal/validation"
	"brandsales/pkg/contracts"
	"brandsales/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	format  string
	out     string
	rules   string
	verbose bool
	report  string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("brandreport", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: brandreport [flags] <report.csv|report.xlsx>")
		flags.PrintDefaults()
	}

	var opts options
	flags.StringVar(&opts.format, "format", "table", "output format: table | csv | xlsx | json")
	flags.StringVar(&opts.out, "out", "", "write the summary to this file instead of stdout")
	flags.StringVar(&opts.rules, "rules", "", "YAML brand rules file (overrides the configured rules)")
	flags.BoolVar(&opts.verbose, "v", false, "log debug output to stderr")
	version := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if *version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}
	opts.report = flags.Arg(0)

	if err := summarize(ctx, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error processing file: %v\n", err)
		return exitError
	}
	return exitOK
}

func summarize(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := infrastructure.NewLogger(config.LoggingConfig{Level: level, Format: "text"}, stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	}
	if opts.rules != "" {
		cfg.Brands.RulesFile = opts.rules
	}

	if opts.format != "table" && opts.format != "json" {
		if _, err := exporter.ParseFormat(opts.format); err != nil {
			return err
		}
	}
	if opts.format == string(exporter.FormatXLSX) && opts.out == "" {
		return errors.New("xlsx output needs -out")
	}

	rules, err := cfg.Brands.Resolve()
	if err != nil {
		return err
	}
	if rules == nil {
		rules = dataprocessing.DefaultBrandRules()
	}
	classifier, err := dataprocessing.NewBrandClassifier(rules)
	if err != nil {
		return err
	}

	fileValidator := validation.NewFileValidator(logger, cfg.Upload)
	if err := fileValidator.ValidateReportFile(opts.report); err != nil {
		return err
	}

	f, err := os.Open(opts.report)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	svc := services.NewReportService(classifier, fileValidator, nil, nil, logger)
	result, err := svc.Summarize(ctx, services.Upload{
		Filename: filepath.Base(opts.report),
		Size:     info.Size(),
		Content:  f,
	})
	if err != nil {
		return err
	}

	w := stdout
	if opts.out != "" {
		if err := fileValidator.ValidateOutputDirectory(filepath.Dir(opts.out)); err != nil {
			return err
		}
		outFile, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer outFile.Close()
		w = outFile
	}

	// CSV files get a byte order mark so spreadsheets read them as UTF-8
	bom := opts.out != "" && strings.EqualFold(filepath.Ext(opts.out), ".csv")
	if err := write(w, opts.format, result, exporter.NewMoneyFormatter(cfg.Display.CurrencySymbol, cfg.Display.Locale), bom); err != nil {
		return err
	}

	if opts.out != "" {
		logger.Info("Summary written",
			slog.String("path", opts.out),
			slog.String("format", opts.format),
			slog.Int("brands", len(result.Summary)))
	}
	return nil
}

func write(w io.Writer, format string, result *services.SummaryResult, money *exporter.MoneyFormatter, bom bool) error {
	switch format {
	case string(exporter.FormatCSV):
		if bom {
			return exporter.WriteSummaryCSVWithBOM(w, result.Summary)
		}
		return exporter.WriteSummaryCSV(w, result.Summary)
	case "table":
		return writeTable(w, result, money)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return exporter.Export(w, exporter.Format(format), result.Summary)
	}
}

// writeTable prints the summary aligned for a terminal, followed by the grand
// totals
func writeTable(w io.Writer, result *services.SummaryResult, money *exporter.MoneyFormatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := domain.SummaryHeader
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", header[0], header[1], header[2], header[3])
	for _, row := range result.Summary {
		writeTableRow(tw, row, money)
	}
	fmt.Fprintln(tw, "\t\t\t\t")
	writeTableRow(tw, result.Totals, money)

	return tw.Flush()
}

func writeTableRow(w io.Writer, row domain.BrandSummary, money *exporter.MoneyFormatter) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
		row.Brand,
		money.Format(row.ConsumerSales),
		money.Format(row.B2BSales),
		money.Format(row.TotalSales))
}
