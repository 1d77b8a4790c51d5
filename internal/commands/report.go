package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stmtlens/stmtlens/internal/aggregate"
	"github.com/stmtlens/stmtlens/internal/export"
	"github.com/stmtlens/stmtlens/internal/model"
)

// reportOptions are the filter and output flags shared by normalize and
// report.
type reportOptions struct {
	from, to     string
	taxID, name  string
	out, csvOut  string
	counterparty string
}

func (o *reportOptions) bind(f *pflag.FlagSet) {
	f.StringVar(&o.from, "from", "", "keep records on or after this date (YYYY-MM-DD)")
	f.StringVar(&o.to, "to", "", "keep records on or before this date (YYYY-MM-DD)")
	f.StringVar(&o.taxID, "tax-id", "", "keep records whose counterparty tax id contains this text")
	f.StringVar(&o.name, "name", "", "keep records whose counterparty name contains this text (any case)")
	f.StringVar(&o.out, "out", "", "xlsx report path (default <export dir>/report-<timestamp>.xlsx)")
	f.StringVar(&o.csvOut, "csv", "", "also write the filtered records as CSV to this path")
	f.StringVar(&o.counterparty, "counterparty", "", "add an Operations sheet for this exact tax id")
}

func (o reportOptions) filter() (aggregate.Filter, error) {
	var f aggregate.Filter
	var err error
	if o.from != "" {
		if f.From, err = civil.ParseDate(o.from); err != nil {
			return f, fmt.Errorf("--from: %w", err)
		}
	}
	if o.to != "" {
		if f.To, err = civil.ParseDate(o.to); err != nil {
			return f, fmt.Errorf("--to: %w", err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("--to %s is before --from %s", f.To, f.From)
	}
	f.TaxID = o.taxID
	f.Name = o.name
	return f, nil
}

func newReportCommand() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <records.csv>...",
		Short: "Rebuild the report from canonical record CSVs",
		Long: `Report reads CSV files written by normalize --csv, applies the filters
and writes the xlsx report again without touching the statement files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runReport(cmd.OutOrStdout(), p, args, opts, time.Now())
		},
	}

	opts.bind(cmd.Flags())

	return cmd
}

func runReport(out io.Writer, p *project, paths []string, opts reportOptions, now time.Time) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	var records []model.Record
	for _, path := range paths {
		recs, err := readRecordsFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d records\n", filepath.Base(path), len(recs))
		records = append(records, recs...)
	}
	return writeReport(out, p, records, filter, opts, now)
}

func readRecordsFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()

	recs, err := export.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

// writeReport prints the totals for records and writes the xlsx report and
// the optional CSV. An empty records slice skips all output.
func writeReport(out io.Writer, p *project, records []model.Record, filter aggregate.Filter, opts reportOptions, now time.Time) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No records to analyze.")
		return nil
	}

	filtered := filter.Apply(records)
	aggs := aggregate.Aggregate(filtered)
	printTotals(out, "Combined", aggregate.Summarize(records))
	if !filter.IsZero() {
		printTotals(out, "Filtered", aggregate.Summarize(filtered))
	}
	fmt.Fprintf(out, "Counterparties: %d\n", len(aggs))

	sheets := []export.Sheet{
		export.RecordsSheet(export.SheetCombined, records),
		export.RecordsSheet(export.SheetFiltered, filtered),
		export.AggregatesSheet(export.SheetCounterparties, aggs),
	}
	if opts.counterparty != "" {
		ops := aggregate.ForCounterparty(filtered, opts.counterparty)
		fmt.Fprintf(out, "Operations with %s: %d\n", opts.counterparty, len(ops))
		sheets = append(sheets, export.RecordsSheet(export.SheetOperations, ops))
	}

	reportPath := opts.out
	if reportPath == "" {
		reportPath = filepath.Join(p.Dir, p.Config.Export.Dir, "report-"+now.Format("20060102-150405")+".xlsx")
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets...); err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	if err := writeFile(reportPath, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", reportPath)

	if opts.csvOut != "" {
		buf.Reset()
		if err := export.WriteRecords(&buf, filtered); err != nil {
			return fmt.Errorf("building CSV: %w", err)
		}
		if err := writeFile(opts.csvOut, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(out, "CSV written to %s\n", opts.csvOut)
	}
	return nil
}

func printTotals(out io.Writer, label string, t aggregate.Totals) {
	fmt.Fprintf(out, "%s: %d operations, debit %s, credit %s\n", label, t.Count, formatAmount(t.Debit), formatAmount(t.Credit))
}

// formatAmount renders d with two decimals and space-grouped thousands.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
