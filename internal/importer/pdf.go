package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"
)

// minPDFTokens is the token count below which an extracted text line is
// treated as page furniture rather than a statement row.
const minPDFTokens = 4

// PDFReader extracts the plain text of a PDF statement and splits every line
// into whitespace-separated tokens. The first surviving line is the header.
type PDFReader struct{}

// Format returns the file extension.
func (p *PDFReader) Format() string { return "pdf" }

// Read implements Reader.
func (p *PDFReader) Read(data []byte) (Grid, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Grid{}, fmt.Errorf("opening PDF: %w", err)
	}
	text, err := r.GetPlainText()
	if err != nil {
		return Grid{}, fmt.Errorf("extracting text: %w", err)
	}
	raw, err := io.ReadAll(text)
	if err != nil {
		return Grid{}, fmt.Errorf("reading text: %w", err)
	}
	return Grid{Rows: TextToRows(string(raw)), HeaderFirst: true}, nil
}

// TextToRows tokenizes extracted text line by line, dropping lines with
// fewer than four tokens.
func TextToRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		tokens := strings.Fields(line)
		if len(tokens) < minPDFTokens {
			continue
		}
		rows = append(rows, tokens)
	}
	return rows
}
