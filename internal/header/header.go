// Package header locates the header row of a raw statement grid.
package header

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHeaderNotFound is returned when a strategy finds no qualifying row.
var ErrHeaderNotFound = errors.New("header row not found")

// DefaultDepth is how many leading rows the density strategy inspects when
// unset, and the depth a new project config gives both strategies.
const DefaultDepth = 10

// DefaultMinMatches is the keyword hit count a header row needs.
const DefaultMinMatches = 2

// DefaultKeywords are matched as case-insensitive substrings of header cells.
var DefaultKeywords = []string{
	"date", "purpose", "tax-id", "counterparty",
	"дата", "назначение", "инн", "контрагент",
}

// Detector picks the zero-based index of the header row in grid.
type Detector interface {
	Find(grid [][]string) (int, error)
}

// Keyword selects the first row in which at least MinMatches cells contain
// one of Keywords. Depth limits the scan; zero scans every row.
type Keyword struct {
	Keywords   []string
	MinMatches int
	Depth      int
}

// Find implements Detector.
func (k Keyword) Find(grid [][]string) (int, error) {
	keywords := k.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	minMatches := k.MinMatches
	if minMatches <= 0 {
		minMatches = DefaultMinMatches
	}

	for i := 0; i < scanLimit(len(grid), k.Depth); i++ {
		if keywordHits(grid[i], lowered) >= minMatches {
			return i, nil
		}
	}
	return 0, ErrHeaderNotFound
}

func keywordHits(row []string, keywords []string) int {
	hits := 0
	for _, cell := range row {
		cell = strings.ToLower(cell)
		for _, kw := range keywords {
			if strings.Contains(cell, kw) {
				hits++
				break
			}
		}
	}
	return hits
}

// Density selects the row with the most non-blank cells among the first
// Depth rows (DefaultDepth when zero). Ties go to the lowest index. It never
// fails; an empty grid yields 0.
type Density struct {
	Depth int
}

// Find implements Detector.
func (d Density) Find(grid [][]string) (int, error) {
	depth := d.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	best, bestCount := 0, 0
	for i := 0; i < scanLimit(len(grid), depth); i++ {
		if n := nonBlank(grid[i]); n > bestCount {
			best, bestCount = i, n
		}
	}
	return best, nil
}

func nonBlank(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func scanLimit(rows, depth int) int {
	if depth > 0 && depth < rows {
		return depth
	}
	return rows
}

// Chain tries Primary and falls back to Fallback when Primary reports
// ErrHeaderNotFound. Other errors are returned as is.
type Chain struct {
	Primary  Detector
	Fallback Detector
}

// Find implements Detector.
func (c Chain) Find(grid [][]string) (int, error) {
	i, err := c.Primary.Find(grid)
	if errors.Is(err, ErrHeaderNotFound) {
		return c.Fallback.Find(grid)
	}
	return i, err
}

// Default returns the keyword strategy backed by the density strategy.
func Default() Detector {
	return Chain{Primary: Keyword{}, Fallback: Density{}}
}

// Strategy names accepted by New.
const (
	StrategyAuto    = "auto"
	StrategyKeyword = "keyword"
	StrategyDensity = "density"
)

// Options configures New.
type Options struct {
	Strategy   string
	Depth      int
	MinMatches int
	Keywords   []string
}

// New builds a detector for the named strategy. Auto (also the empty name)
// is keyword matching backed by density. Depth bounds both strategies.
func New(opts Options) (Detector, error) {
	kw := Keyword{Keywords: opts.Keywords, MinMatches: opts.MinMatches, Depth: opts.Depth}
	density := Density{Depth: opts.Depth}

	switch strings.ToLower(strings.TrimSpace(opts.Strategy)) {
	case "", StrategyAuto:
		return Chain{Primary: kw, Fallback: density}, nil
	case StrategyKeyword:
		return kw, nil
	case StrategyDensity:
		return density, nil
	default:
		return nil, fmt.Errorf("unknown header strategy %q", opts.Strategy)
	}
}
