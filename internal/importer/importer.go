// Package importer reads statement files of any supported format into raw
// cell grids.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Grid is the untyped cell content of one statement file.
type Grid struct {
	Rows [][]string
	// HeaderFirst is set by readers whose first row is always the header,
	// so header detection can be skipped.
	HeaderFirst bool
	// SerialDates is set by spreadsheet readers, whose date cells arrive as
	// Excel serial day numbers.
	SerialDates bool
}

// Reader converts the bytes of one file format into a Grid.
type Reader interface {
	Read(data []byte) (Grid, error)
	Format() string
}

// Registry holds readers keyed by file extension.
type Registry struct {
	readers map[string]Reader
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(strings.TrimPrefix(format, "."))]
}

// Formats returns the registered formats in lexical order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.readers))
	for k := range r.readers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXReader{})
	r.Register(&XLSReader{})
	r.Register(&CSVReader{})
	r.Register(&PDFReader{})
	return r
}

// Load reads the file at path with the reader registered for its extension.
func (r *Registry) Load(path string) (Grid, error) {
	ext := filepath.Ext(path)
	rd := r.Get(ext)
	if rd == nil {
		return Grid{}, fmt.Errorf("unsupported file format %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return readSafely(rd, data)
}

// readSafely converts panics raised by third-party decoders on corrupt input
// into errors.
func readSafely(rd Reader, data []byte) (g Grid, err error) {
	defer func() {
		if p := recover(); p != nil {
			g, err = Grid{}, fmt.Errorf("decoding %s: %v", rd.Format(), p)
		}
	}()
	g, err = rd.Read(data)
	if err != nil {
		return Grid{}, fmt.Errorf("decoding %s: %w", rd.Format(), err)
	}
	return g, nil
}

// importDir is the subdirectory for statement files.
const importDir = "import"

// processedDir is the subdirectory for processed statement files.
const processedDir = "import/processed"

// Scan returns the files in <repoRoot>/import/ that a registered reader
// understands, ordered by name.
func (r *Registry) Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if r.Get(filepath.Ext(e.Name())) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
