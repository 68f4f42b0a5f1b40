package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-fsx/osfs"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/metadata"
	"github.com/warptools/noidwrap/pkg/noid"
	"github.com/warptools/noidwrap/pkg/noid/noidmock"
)

// writeTree creates files (relative path to contents) below a fresh temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		qt.Assert(t, os.MkdirAll(filepath.Dir(path), 0755), qt.IsNil)
		qt.Assert(t, os.WriteFile(path, []byte(body), 0644), qt.IsNil)
	}
	return dir
}

var collection = map[string]string{
	"box1/1.json":       `{"ark": "99999/fk4a", "title": "Letter", "year": 1891}`,
	"box1/10.json":      `{"title": "Program", "creator": {"name": "Carnegie Hall"}}`,
	"box1/2.yaml":       "ark: 99999/fk4b\ntitle: Photograph\n",
	"box2/readme.txt":   "not metadata",
	".cache/stale.json": `{"ark": "99999/fk4zzz", "title": "should never be seen"}`,
}

func dirSource(dir string) DirSource {
	return DirSource{FS: osfs.DirFS(dir), Root: ".", Name: dir}
}

func mapping(t *testing.T, pairs ...string) metadata.Mapping {
	m, err := metadata.ParseMapping(pairs)
	qt.Assert(t, err, qt.IsNil)
	return m
}

func TestDirSourceList(t *testing.T) {
	dir := writeTree(t, collection)
	paths, err := dirSource(dir).List(context.Background())
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, paths, qt.DeepEquals, []string{"box1/1.json", "box1/2.yaml", "box1/10.json"})

	_, err = dirSource(filepath.Join(dir, "nope")).List(context.Background())
	qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeSearchingFS)
}

func TestIngestEmptyMappingBindsNothing(t *testing.T) {
	dir := writeTree(t, collection)
	mock := noidmock.New()
	in := &Ingester{
		Client:      noid.NewClient(mock),
		IDField:     "ark",
		MintMissing: true,
	}
	report, err := in.Ingest(context.Background(), dirSource(dir))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, report.Files, qt.HasLen, 3)
	for _, f := range report.Files {
		qt.Check(t, f.Skipped, qt.Equals, SkipEmptyMapping)
		qt.Check(t, f.Elements, qt.HasLen, 0)
	}
	qt.Check(t, mock.Calls, qt.HasLen, 0)
	qt.Check(t, mock.Bound(), qt.HasLen, 0)
}

func TestIngestBindsMappedFields(t *testing.T) {
	dir := writeTree(t, collection)
	mock := noidmock.New()
	in := &Ingester{
		Client:      noid.NewClient(mock),
		Mapping:     mapping(t, "title=what", "year=when", "creator.name=who"),
		IDField:     "ark",
		MintMissing: true,
	}
	report, err := in.Ingest(context.Background(), dirSource(dir))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, report.RunID, qt.Not(qt.Equals), "")
	bound, skipped, failed := report.Count()
	qt.Check(t, []int{bound, skipped, failed}, qt.DeepEquals, []int{3, 0, 0})

	qt.Check(t, report.Files[0].ID, qt.Equals, noid.ID("99999/fk4a"))
	qt.Check(t, report.Files[1].ID, qt.Equals, noid.ID("99999/fk4b"))
	qt.Check(t, report.Files[2].Minted, qt.IsTrue)
	qt.Check(t, mock.CallsTo("mint"), qt.HasLen, 1)

	qt.Check(t, mock.Bound(), qt.DeepEquals, map[noid.ID][]noid.Element{
		"99999/fk4a": {{Name: "what", Value: "Letter"}, {Name: "when", Value: "1891"}},
		"99999/fk4b": {{Name: "what", Value: "Photograph"}},
		report.Files[2].ID: {{Name: "what", Value: "Program"}, {Name: "who", Value: "Carnegie Hall"}},
	})
	for _, call := range mock.CallsTo("bind") {
		qt.Check(t, call[1], qt.Equals, "set")
	}
}

func TestIngestIsRepeatable(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.json": `{"ark": "99999/fk4a", "title": "Letter"}`})
	mock := noidmock.New()
	in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), IDField: "ark"}
	for i := 0; i < 2; i++ {
		_, err := in.Ingest(context.Background(), dirSource(dir))
		qt.Assert(t, err, qt.IsNil)
	}
	qt.Check(t, mock.Bound()["99999/fk4a"], qt.DeepEquals, []noid.Element{{Name: "what", Value: "Letter"}})
}

func TestIngestSkips(t *testing.T) {
	dir := writeTree(t, collection)
	mock := noidmock.New()
	in := &Ingester{
		Client:  noid.NewClient(mock),
		Mapping: mapping(t, "year=when"),
		IDField: "ark",
	}
	report, err := in.Ingest(context.Background(), dirSource(dir))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, report.Files[0].Skipped, qt.Equals, "")
	qt.Check(t, report.Files[1].Skipped, qt.Equals, SkipNoFields)
	qt.Check(t, report.Files[2].Skipped, qt.Equals, SkipNoFields)

	in.Mapping = mapping(t, "title=what")
	report, err = in.Ingest(context.Background(), dirSource(dir))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, report.Files[2].Skipped, qt.Equals, SkipNoIdentifier)
	qt.Check(t, mock.CallsTo("mint"), qt.HasLen, 0)
}

func TestIngestFailures(t *testing.T) {
	files := map[string]string{
		"1.json": `{"ark": "99999/fk4a", "title": "Letter"}`,
		"2.json": `{"ark": "99999/fk4b", "title": `,
		"3.json": `{"ark": "99999/fk4c", "title": "Photograph"}`,
	}
	dir := writeTree(t, files)

	t.Run("stop-at-first", func(t *testing.T) {
		mock := noidmock.New()
		in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), IDField: "ark"}
		report, err := in.Ingest(context.Background(), dirSource(dir))
		qt.Assert(t, serum.Code(err), qt.Equals, noidapi.ECodeIngest)
		qt.Check(t, report.Files, qt.HasLen, 2)
		qt.Check(t, mock.CallsTo("bind"), qt.HasLen, 1)
	})
	t.Run("continue", func(t *testing.T) {
		mock := noidmock.New()
		in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), IDField: "ark", ContinueOnError: true}
		report, err := in.Ingest(context.Background(), dirSource(dir))
		qt.Assert(t, serum.Code(err), qt.Equals, noidapi.ECodeIngest)
		qt.Check(t, err.Error(), qt.Contains, "1 of 3")
		bound, skipped, failed := report.Count()
		qt.Check(t, []int{bound, skipped, failed}, qt.DeepEquals, []int{2, 0, 1})
		qt.Check(t, serum.Code(report.Files[1].Err), qt.Equals, noidapi.ECodeIngest)
	})
	t.Run("noid-refuses", func(t *testing.T) {
		mock := noidmock.New()
		mock.Fail = map[string]string{"bind": "error: database is read-only"}
		in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), IDField: "ark", ContinueOnError: true}
		report, err := in.Ingest(context.Background(), dirSource(dir))
		qt.Assert(t, err, qt.IsNotNil)
		qt.Check(t, err.Error(), qt.Contains, "read-only")
		_, _, failed := report.Count()
		qt.Check(t, failed, qt.Equals, 3)
	})
	t.Run("bad-mode", func(t *testing.T) {
		mock := noidmock.New()
		in := &Ingester{Client: noid.NewClient(mock), Mapping: mapping(t, "title=what"), Mode: "clobber"}
		_, err := in.Ingest(context.Background(), dirSource(dir))
		qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeArgument)
		qt.Check(t, mock.Calls, qt.HasLen, 0)
	})
}
