package normalize

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/stmtlens/stmtlens/internal/header"
	"github.com/stmtlens/stmtlens/internal/importer"
	"github.com/stmtlens/stmtlens/internal/matcher"
	"github.com/stmtlens/stmtlens/internal/model"
)

// ErrFileProcessing marks a statement file that produced no table at all.
var ErrFileProcessing = errors.New("file processing failed")

// Input is one statement file to process.
type Input struct {
	Name   string // display name; the base of Path when empty
	Path   string
	Manual *model.FieldMapping // overrides template matching when non-empty
}

func (in Input) displayName() string {
	if in.Name != "" {
		return in.Name
	}
	return filepath.Base(in.Path)
}

// FileError reports a file that was skipped entirely.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.File, e.Err)
}

// Unwrap exposes both ErrFileProcessing and the underlying cause.
func (e *FileError) Unwrap() []error { return []error{ErrFileProcessing, e.Err} }

// FileResult describes one successfully processed file.
type FileResult struct {
	File       string
	HeaderRow  int
	Columns    []string
	Resolution matcher.Resolution
	TableResult
}

// Result is the outcome of a multi-file run. Records holds the kept rows of
// every file in input order, then row order.
type Result struct {
	Records []model.Record
	Files   []FileResult
	Errors  []*FileError
}

// Pipeline wires loading, header detection, mapping resolution and row
// normalization together.
type Pipeline struct {
	Importer   *importer.Registry
	Detector   header.Detector
	Resolver   matcher.Resolver
	Normalizer *Normalizer
	Log        zerolog.Logger
}

// NewPipeline returns a pipeline using the built-in readers, the default
// header detector and date layouts.
func NewPipeline(resolver matcher.Resolver, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Importer:   importer.DefaultRegistry(),
		Detector:   header.Default(),
		Resolver:   resolver,
		Normalizer: New(),
		Log:        log,
	}
}

// Run processes inputs one after another. A file that fails is recorded in
// Result.Errors and does not stop the remaining files.
func (p *Pipeline) Run(inputs []Input) Result {
	var res Result
	for _, in := range inputs {
		fr, err := p.File(in)
		if err != nil {
			fe := &FileError{File: in.displayName(), Err: err}
			p.Log.Error().Str("file", fe.File).Err(err).Msg("file skipped")
			res.Errors = append(res.Errors, fe)
			continue
		}
		res.Files = append(res.Files, fr)
		res.Records = append(res.Records, fr.Records...)
	}
	return res
}

// File processes a single statement file.
func (p *Pipeline) File(in Input) (FileResult, error) {
	name := in.displayName()
	grid, err := p.Importer.Load(in.Path)
	if err != nil {
		return FileResult{}, err
	}
	return p.Grid(name, grid, in.Manual)
}

// Grid processes an already loaded grid.
func (p *Pipeline) Grid(name string, grid importer.Grid, manual *model.FieldMapping) (FileResult, error) {
	if len(grid.Rows) == 0 {
		return FileResult{}, errors.New("file contains no rows")
	}

	headerRow := 0
	if !grid.HeaderFirst {
		i, err := p.Detector.Find(grid.Rows)
		if err != nil {
			return FileResult{}, fmt.Errorf("detecting header: %w", err)
		}
		headerRow = i
	}

	tbl, err := model.NewRawTable(grid.Rows, headerRow)
	if err != nil {
		return FileResult{}, fmt.Errorf("building table: %w", err)
	}

	columns := tbl.Columns()
	res := p.Resolver.Resolve(columns, manual)
	log := p.Log.With().Str("file", name).Logger()
	for _, w := range res.Warnings {
		log.Warn().Str("source", string(res.Source)).Msg(w)
	}

	norm := p.Normalizer
	if grid.SerialDates {
		norm = norm.WithSerialDates()
	}
	tr := norm.Table(tbl, res.Mapping)
	log.Info().
		Int("header_row", headerRow).
		Str("source", string(res.Source)).
		Str("template", res.Template).
		Int("rows", tr.Rows).
		Int("kept", len(tr.Records)).
		Int("rejected", tr.Rejected).
		Msg("file normalized")

	return FileResult{
		File:        name,
		HeaderRow:   headerRow,
		Columns:     columns,
		Resolution:  res,
		TableResult: tr,
	}, nil
}
