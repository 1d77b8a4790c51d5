package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// CSVReader reads delimited text. The delimiter (";", "," or tab) is
// guessed from the first lines; input that is not valid UTF-8 is decoded as
// Windows-1251, the usual encoding of Russian bank exports.
type CSVReader struct{}

// Format returns the file extension.
func (c *CSVReader) Format() string { return "csv" }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read implements Reader.
func (c *CSVReader) Read(data []byte) (Grid, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return Grid{}, fmt.Errorf("decoding windows-1251: %w", err)
		}
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return Grid{}, fmt.Errorf("reading CSV: %w", err)
	}
	return Grid{Rows: records}, nil
}

const sniffLines = 20

func sniffDelimiter(data []byte) rune {
	lines := bytes.SplitN(data, []byte("\n"), sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	sample := bytes.Join(lines, nil)

	best, bestCount := ',', 0
	for _, d := range []rune{';', '\t', ','} {
		if n := bytes.Count(sample, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
