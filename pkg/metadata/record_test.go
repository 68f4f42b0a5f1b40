package metadata

import (
	"testing"
	"testing/fstest"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/noidwrap/noidapi"
)

var recordFS = fstest.MapFS{
	"items/letter.json": &fstest.MapFile{Data: []byte(`{
	"title": "Letter to the editor",
	"year": 1891,
	"weight": 0.25,
	"published": true,
	"missing": null,
	"creator": {"name": "A. Writer", "born": 1850},
	"subjects": ["history", "music"]
}`)},
	"items/photo.yaml": &fstest.MapFile{Data: []byte(`
title: "Carnegie Hall, 1891"
year: 1891
creator:
  name: Unknown photographer
subjects:
  - architecture
  - music
notes: |
  first line
  second line
`)},
	"items/array.json":  &fstest.MapFile{Data: []byte(`["not", "a", "map"]`)},
	"items/broken.json": &fstest.MapFile{Data: []byte(`{"title": `)},
	"items/broken.yml":  &fstest.MapFile{Data: []byte("title: [unclosed\n")},
	"items/notes.txt":   &fstest.MapFile{Data: []byte("title: plain text\n")},
}

func TestLoadRecordJSON(t *testing.T) {
	rec, err := LoadRecord(recordFS, "items/letter.json")
	qt.Assert(t, err, qt.IsNil)
	for _, tc := range []struct {
		field  string
		expect string
		ok     bool
	}{
		{"title", "Letter to the editor", true},
		{"year", "1891", true},
		{"weight", "0.25", true},
		{"published", "true", true},
		{"missing", "", false},
		{"nonexistent", "", false},
		{"creator.name", "A. Writer", true},
		{"creator.born", "1850", true},
		{"creator.name.first", "", false},
		{"subjects.1", "music", true},
		{"subjects.7", "", false},
		{"subjects", `["history","music"]`, true},
	} {
		v, ok, err := rec.Lookup(tc.field)
		qt.Assert(t, err, qt.IsNil, qt.Commentf("field %q", tc.field))
		qt.Check(t, ok, qt.Equals, tc.ok, qt.Commentf("field %q", tc.field))
		qt.Check(t, v, qt.Equals, tc.expect, qt.Commentf("field %q", tc.field))
	}
	v, ok, err := rec.Lookup("creator")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, ok, qt.IsTrue)
	qt.Check(t, v, qt.Contains, `"name":"A. Writer"`)
}

func TestLoadRecordYAML(t *testing.T) {
	rec, err := LoadRecord(recordFS, "items/photo.yaml")
	qt.Assert(t, err, qt.IsNil)
	for field, expect := range map[string]string{
		"title":        "Carnegie Hall, 1891",
		"year":         "1891",
		"creator.name": "Unknown photographer",
		"subjects.0":   "architecture",
		"notes":        "first line\nsecond line\n",
	} {
		v, ok, err := rec.Lookup(field)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, ok, qt.IsTrue, qt.Commentf("field %q", field))
		qt.Check(t, v, qt.Equals, expect, qt.Commentf("field %q", field))
	}
}

func TestLoadRecordErrors(t *testing.T) {
	for path, code := range map[string]string{
		"items/array.json":   noidapi.ECodeMetadata,
		"items/broken.json":  noidapi.ECodeMetadata,
		"items/broken.yml":   noidapi.ECodeMetadata,
		"items/notes.txt":    noidapi.ECodeMetadata,
		"items/absent.json":  noidapi.ECodeIo,
		"/items/absent.yaml": noidapi.ECodeIo,
	} {
		_, err := LoadRecord(recordFS, path)
		qt.Assert(t, err, qt.IsNotNil, qt.Commentf("path %q", path))
		qt.Check(t, serum.Code(err), qt.Equals, code, qt.Commentf("path %q", path))
	}
}

func TestSupported(t *testing.T) {
	qt.Check(t, Supported("a/b.json"), qt.IsTrue)
	qt.Check(t, Supported("a/b.YML"), qt.IsTrue)
	qt.Check(t, Supported("a/b.yaml"), qt.IsTrue)
	qt.Check(t, Supported("a/b.xml"), qt.IsFalse)
	qt.Check(t, Supported("README"), qt.IsFalse)
}
