package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/noid"
)

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping([]string{"title=what", " creator.name = who ", "year=when", "title=dc.title"})
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Entries, qt.DeepEquals, []MappingEntry{
		{Field: "title", Element: "what"},
		{Field: "creator.name", Element: "who"},
		{Field: "year", Element: "when"},
		{Field: "title", Element: "dc.title"},
	})

	m, err = ParseMapping(nil)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Empty(), qt.IsTrue)

	for _, bad := range [][]string{
		{"title"},
		{"=what"},
		{"title="},
		{"title=what", "year=what"},
		{"title=has space"},
	} {
		_, err := ParseMapping(bad)
		qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeMapping, qt.Commentf("%q", bad))
	}
}

func TestLoadMapping(t *testing.T) {
	fsys := fstest.MapFS{
		"mapping.yaml": &fstest.MapFile{Data: []byte(`mappings:
  - field: title
    element: what
  - field: creator.name
    element: who
`)},
		"typo.yaml":  &fstest.MapFile{Data: []byte("mapping:\n  - field: title\n    element: what\n")},
		"dup.yaml":   &fstest.MapFile{Data: []byte("mappings:\n  - {field: a, element: x}\n  - {field: b, element: x}\n")},
		"empty.yaml": &fstest.MapFile{Data: []byte("")},
	}
	m, err := LoadMapping(fsys, "mapping.yaml")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Entries, qt.DeepEquals, []MappingEntry{
		{Field: "title", Element: "what"},
		{Field: "creator.name", Element: "who"},
	})

	m, err = LoadMapping(fsys, "empty.yaml")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Empty(), qt.IsTrue)

	_, err = LoadMapping(fsys, "typo.yaml")
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeMapping)
	_, err = LoadMapping(fsys, "dup.yaml")
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeMapping)
	_, err = LoadMapping(fsys, "nope.yaml")
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeIo)
}

func TestLoadMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yml")
	qt.Assert(t, os.WriteFile(path, []byte("mappings:\n  - {field: title, element: what}\n"), 0644), qt.IsNil)
	m, err := LoadMappingFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Entries, qt.DeepEquals, []MappingEntry{{Field: "title", Element: "what"}})
}

func TestMappingMerge(t *testing.T) {
	a, _ := ParseMapping([]string{"title=what"})
	b, _ := ParseMapping([]string{"year=when"})
	m, err := a.Merge(b)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, m.Entries, qt.HasLen, 2)

	c, _ := ParseMapping([]string{"name=what"})
	_, err = a.Merge(c)
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeMapping)
}

func TestMappingElements(t *testing.T) {
	rec, err := LoadRecord(recordFS, "items/letter.json")
	qt.Assert(t, err, qt.IsNil)

	m, _ := ParseMapping([]string{"title=what", "nonexistent=where", "creator.name=who", "year=when"})
	elems, err := m.Elements(rec)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, elems, qt.DeepEquals, []noid.Element{
		{Name: "what", Value: "Letter to the editor"},
		{Name: "who", Value: "A. Writer"},
		{Name: "when", Value: "1891"},
	})

	elems, err = Mapping{}.Elements(rec)
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, elems, qt.HasLen, 0)
}
