package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/stmtlens/stmtlens/internal/importer"
	"github.com/stmtlens/stmtlens/internal/logger"
	"github.com/stmtlens/stmtlens/internal/matcher"
	"github.com/stmtlens/stmtlens/internal/normalize"
	"github.com/stmtlens/stmtlens/internal/runlog"
)

type normalizeOptions struct {
	reportOptions
	mapping       []string
	templateDir   string
	moveProcessed bool
}

func newNormalizeCommand() *cobra.Command {
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "normalize [files...]",
		Short: "Normalize statement files and build the counterparty report",
		Long: `Normalize reads the given statement files, or every supported file in
import/ when none are given, maps them onto the canonical schema and writes
an xlsx report with the combined, filtered and per-counterparty views.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runNormalize(cmd.Context(), cmd.OutOrStdout(), p, args, opts, time.Now())
		},
	}

	f := cmd.Flags()
	opts.reportOptions.bind(f)
	f.StringArrayVar(&opts.mapping, "map", nil, "manual column mapping field=column, repeatable")
	f.StringVar(&opts.templateDir, "template-dir", "", "directory holding the template documents")
	f.BoolVar(&opts.moveProcessed, "move-processed", false, "move processed files from import/ to import/processed/")

	return cmd
}

func runNormalize(ctx context.Context, out io.Writer, p *project, args []string, opts normalizeOptions, now time.Time) error {
	log := logger.FromContext(ctx)

	filter, err := opts.filter()
	if err != nil {
		return err
	}
	manual, err := parseMapping(opts.mapping)
	if err != nil {
		return err
	}
	fallback, err := p.Config.Fallback()
	if err != nil {
		return err
	}
	detector, err := p.Config.HeaderDetector()
	if err != nil {
		return err
	}

	pipeline := normalize.NewPipeline(matcher.Resolver{
		Templates: p.loadTemplates(ctx, opts.templateDir),
		Default:   fallback,
	}, log)
	pipeline.Detector = detector
	pipeline.Normalizer = normalize.New(p.Config.Dates.Layouts...)

	inputs, scanned, err := collectInputs(pipeline.Importer, p.Dir, args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Fprintln(out, "No statement files found in import/.")
		return nil
	}
	for i := range inputs {
		inputs[i].Manual = &manual
	}

	res := pipeline.Run(inputs)
	printFiles(out, res)
	recordRun(ctx, p.Dir, res, now)

	if opts.moveProcessed {
		if scanned {
			for _, fr := range res.Files {
				if err := importer.MarkProcessed(p.Dir, fr.File); err != nil {
					log.Warn().Err(err).Msg("could not move processed file")
				}
			}
		} else {
			log.Warn().Msg("--move-processed only applies to files scanned from import/")
		}
	}

	return writeReport(out, p, res.Records, filter, opts.reportOptions, now)
}

// collectInputs returns the explicit files, or the import/ scan when there
// are none. scanned reports which of the two it used.
func collectInputs(reg *importer.Registry, dir string, args []string) (inputs []normalize.Input, scanned bool, err error) {
	if len(args) > 0 {
		for _, a := range args {
			inputs = append(inputs, normalize.Input{Path: a})
		}
		return inputs, false, nil
	}

	files, err := reg.Scan(dir)
	if err != nil {
		return nil, true, err
	}
	for _, f := range files {
		inputs = append(inputs, normalize.Input{Name: f.Name, Path: f.Path})
	}
	return inputs, true, nil
}

func printFiles(out io.Writer, res normalize.Result) {
	for _, fr := range res.Files {
		via := string(fr.Resolution.Source)
		if fr.Resolution.Template != "" {
			via += " " + fr.Resolution.Template
		}
		fmt.Fprintf(out, "%s: %d records, %d rejected (%s)\n", fr.File, len(fr.Records), fr.Rejected, via)
	}
	for _, fe := range res.Errors {
		fmt.Fprintf(out, "%s: skipped: %v\n", fe.File, fe.Err)
	}
}

func recordRun(ctx context.Context, dir string, res normalize.Result, now time.Time) {
	runID := runlog.NewRunID()
	var entries []runlog.Entry
	for _, fr := range res.Files {
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			File:      fr.File,
			Status:    runlog.StatusOK,
			Template:  fr.Resolution.Template,
			Source:    string(fr.Resolution.Source),
			Rows:      fr.Rows,
			Rejected:  fr.Rejected,
		})
	}
	for _, fe := range res.Errors {
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			RunID:     runID,
			File:      fe.File,
			Status:    runlog.StatusFailed,
			Error:     fe.Err.Error(),
		})
	}
	if err := runlog.Append(dir, entries); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("failed to write import log")
	}
}
