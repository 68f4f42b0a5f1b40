package metadata

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/noid"
)

// MappingEntry says which record field is bound to which noid element.
type MappingEntry struct {
	Field   string `yaml:"field"`
	Element string `yaml:"element"`
}

func (e MappingEntry) String() string {
	return e.Field + "=" + e.Element
}

// Mapping is an ordered list of field to element entries.
// No two entries share an element; a field may feed several elements.
type Mapping struct {
	Entries []MappingEntry `yaml:"mappings"`
}

// Empty reports whether the mapping binds nothing.
func (m Mapping) Empty() bool {
	return len(m.Entries) == 0
}

// ParseMapping parses "field=element" pairs, as given on the command line.
//
// Errors:
//
//   - noidwrap-error-mapping -- when a pair is malformed, or an element repeats
func ParseMapping(pairs []string) (Mapping, error) {
	var m Mapping
	for _, pair := range pairs {
		field, element, ok := strings.Cut(pair, "=")
		if !ok {
			return Mapping{}, noidapi.ErrorMapping(pair, "expected field=element")
		}
		m.Entries = append(m.Entries, MappingEntry{
			Field:   strings.TrimSpace(field),
			Element: strings.TrimSpace(element),
		})
	}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// LoadMapping reads a YAML mapping file of the form:
//
//	mappings:
//	  - field: title
//	    element: what
//
// Errors:
//
//   - noidwrap-error-io -- when the file cannot be read
//   - noidwrap-error-mapping -- when the file is malformed or fails Validate
func LoadMapping(fsys fs.FS, path string) (Mapping, error) {
	data, err := fs.ReadFile(fsys, strings.TrimPrefix(path, "/"))
	if err != nil {
		return Mapping{}, noidapi.ErrorIo("reading mapping file", path, err)
	}
	var m Mapping
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Mapping{}, noidapi.ErrorMapping(path, err.Error())
	}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// LoadMappingFile is LoadMapping against the host filesystem.
//
// Errors:
//
//   - noidwrap-error-io -- see LoadMapping
//   - noidwrap-error-mapping -- see LoadMapping
func LoadMappingFile(path string) (Mapping, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Mapping{}, noidapi.ErrorIo("resolving mapping file", path, err)
	}
	return LoadMapping(os.DirFS("/"), filepath.ToSlash(abs))
}

// Validate checks every entry has both sides and no element is mapped twice.
//
// Errors:
//
//   - noidwrap-error-mapping -- when an entry is invalid
func (m Mapping) Validate() error {
	seen := map[string]struct{}{}
	for _, e := range m.Entries {
		switch {
		case e.Field == "":
			return noidapi.ErrorMapping(e.String(), "field is empty")
		case noid.ElementNameProblem(e.Element) != "":
			return noidapi.ErrorMapping(e.String(), noid.ElementNameProblem(e.Element))
		}
		if _, dup := seen[e.Element]; dup {
			return noidapi.ErrorMapping(e.String(), "element "+e.Element+" is mapped more than once")
		}
		seen[e.Element] = struct{}{}
	}
	return nil
}

// Merge appends the entries of other, which must not reuse any element.
//
// Errors:
//
//   - noidwrap-error-mapping -- when the result fails Validate
func (m Mapping) Merge(other Mapping) (Mapping, error) {
	merged := Mapping{Entries: make([]MappingEntry, 0, len(m.Entries)+len(other.Entries))}
	merged.Entries = append(merged.Entries, m.Entries...)
	merged.Entries = append(merged.Entries, other.Entries...)
	if err := merged.Validate(); err != nil {
		return Mapping{}, err
	}
	return merged, nil
}

// Elements picks the mapped fields out of rec, in mapping order.
// Fields the record doesn't have are left out.
//
// Errors:
//
//   - noidwrap-error-metadata -- when a field's value cannot be rendered as text
func (m Mapping) Elements(rec Record) ([]noid.Element, error) {
	var result []noid.Element
	for _, e := range m.Entries {
		v, ok, err := rec.Lookup(e.Field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result = append(result, noid.Element{Name: e.Element, Value: v})
	}
	return result, nil
}
