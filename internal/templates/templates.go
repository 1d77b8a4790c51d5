// Package templates loads named column mappings for recurring statement
// layouts.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stmtlens/stmtlens/internal/model"
)

// CurrentVersion is the newest template document version this package reads.
const CurrentVersion = 1

// ErrSourceUnavailable marks a template source that could not be read.
var ErrSourceUnavailable = errors.New("template source unavailable")

// Source is one template document on disk.
type Source struct {
	Name string // "global", "user", ...
	Path string
}

// SourceError reports a source, or a single template within it, that was
// skipped during Load.
type SourceError struct {
	Source   Source
	Template string // empty when the whole source was skipped
	Err      error
}

func (e *SourceError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("template %q in %s source %s: %v", e.Template, e.Source.Name, e.Source.Path, e.Err)
	}
	return fmt.Sprintf("%s source %s: %v", e.Source.Name, e.Source.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Template is a named field mapping.
type Template struct {
	Name    string
	Mapping model.FieldMapping
}

// document is the persisted shape:
//
//	{"version": 1, "templates": {"<name>": {"<field>": "<column>"}}}
//
// Documents without a version are read as version 1.
type document struct {
	Version   int                          `json:"version,omitempty" yaml:"version,omitempty"`
	Templates map[string]map[string]string `json:"templates" yaml:"templates"`
}

// Set is a merged collection of templates keyed by name.
type Set struct {
	byName map[string]model.FieldMapping
}

// NewSet returns a set holding templates; later entries replace earlier ones
// of the same name.
func NewSet(templates ...Template) *Set {
	s := &Set{byName: make(map[string]model.FieldMapping)}
	for _, t := range templates {
		s.Put(t.Name, t.Mapping)
	}
	return s
}

// Put adds or replaces a template.
func (s *Set) Put(name string, m model.FieldMapping) {
	if s.byName == nil {
		s.byName = make(map[string]model.FieldMapping)
	}
	s.byName[name] = m
}

// Get returns the mapping stored under name.
func (s *Set) Get(name string) (model.FieldMapping, bool) {
	if s == nil {
		return model.FieldMapping{}, false
	}
	m, ok := s.byName[name]
	return m, ok
}

// Names returns template names in lexical order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of templates.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byName)
}

// Load reads sources in order and merges their templates; later sources win
// on name collisions. Unreadable sources and invalid templates are skipped and
// returned as *SourceError values. Load itself never fails.
func Load(sources []Source) (*Set, []error) {
	set := NewSet()
	var problems []error

	for _, src := range sources {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			problems = append(problems, &SourceError{Source: src, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)})
			continue
		}

		tmpls, rejected, err := Parse(data, formatOf(src.Path))
		if err != nil {
			problems = append(problems, &SourceError{Source: src, Err: fmt.Errorf("%w: %w", ErrSourceUnavailable, err)})
			continue
		}
		for _, r := range rejected {
			problems = append(problems, &SourceError{Source: src, Template: r.Name, Err: r.Err})
		}
		for _, t := range tmpls {
			set.Put(t.Name, t.Mapping)
		}
	}
	return set, problems
}

// Format of a template document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Rejection is a template left out of a parsed document.
type Rejection struct {
	Name string
	Err  error
}

// Parse decodes one template document. Templates naming unknown fields are
// left out and reported in rejected; err is set only when the document as a
// whole is unusable. Templates are returned in lexical name order.
func Parse(data []byte, format Format) (tmpls []Template, rejected []Rejection, err error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, nil, err
	}
	if doc.Version > CurrentVersion || doc.Version < 0 {
		return nil, nil, fmt.Errorf("unsupported template document version %d", doc.Version)
	}

	names := make([]string, 0, len(doc.Templates))
	for n := range doc.Templates {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		m, err := model.MappingFromKeys(doc.Templates[name])
		if err != nil {
			rejected = append(rejected, Rejection{Name: name, Err: err})
			continue
		}
		tmpls = append(tmpls, Template{Name: name, Mapping: m})
	}
	return tmpls, rejected, nil
}

func decode(data []byte, format Format) (document, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return document{}, fmt.Errorf("parsing template YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return document{}, fmt.Errorf("parsing template JSON: %w", err)
		}
	}
	return doc, nil
}

// SaveUser adds or replaces one template in the document at path, creating
// the document when it does not exist yet.
func SaveUser(path, name string, m model.FieldMapping) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("template name is required")
	}
	if m.IsEmpty() {
		return fmt.Errorf("template %q maps no fields", name)
	}

	format := formatOf(path)
	doc := document{Version: CurrentVersion}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading templates %s: %w", path, err)
	default:
		if doc, err = decode(data, format); err != nil {
			return fmt.Errorf("reading templates %s: %w", path, err)
		}
		doc.Version = CurrentVersion
	}
	if doc.Templates == nil {
		doc.Templates = make(map[string]map[string]string)
	}
	doc.Templates[name] = m.Keys()

	return write(path, doc, format)
}

func write(path string, doc document, format Format) error {
	var (
		out []byte
		err error
	)
	if format == FormatYAML {
		out, err = yaml.Marshal(doc)
	} else {
		out, err = json.MarshalIndent(doc, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshaling templates: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating templates dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing templates %s: %w", path, err)
	}
	return nil
}

// WriteEmpty writes a document with no templates to path.
func WriteEmpty(path string) error {
	return write(path, document{Version: CurrentVersion, Templates: map[string]map[string]string{}}, formatOf(path))
}
