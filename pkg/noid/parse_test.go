package noid

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-testmark"
)

const fixtureFile = "testdata/noid-output.md"

// fixtureLines splits a hunk body into lines, without the trailing newline.
func fixtureLines(body []byte) []string {
	s := strings.TrimRight(string(body), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func loadFixtures(t *testing.T, group string) []*testmark.DirEnt {
	t.Helper()
	doc, err := testmark.ReadFile(fixtureFile)
	if err != nil {
		t.Fatalf("fixture file parse failed?!: %s", err)
	}
	doc.BuildDirIndex()
	dir := doc.DirEnt.Children[group]
	qt.Assert(t, dir, qt.IsNotNil)
	return dir.ChildrenList
}

// runFixtures calls check for every fixture with an "expect" hunk,
// and asserts the error code for every fixture with an "error" hunk.
func runFixtures(t *testing.T, group string, parse func(stdout string) (interface{}, error), check func(t *testing.T, got interface{}, expect []string)) {
	for _, dir := range loadFixtures(t, group) {
		dir := dir
		t.Run(dir.Name, func(t *testing.T) {
			qt.Assert(t, dir.Children["stdout"], qt.IsNotNil)
			stdout := string(dir.Children["stdout"].Hunk.Body)
			got, err := parse(stdout)
			switch {
			case dir.Children["error"] != nil:
				code := strings.TrimSpace(string(dir.Children["error"].Hunk.Body))
				qt.Assert(t, err, qt.IsNotNil)
				qt.Check(t, serum.Code(err), qt.Equals, code)
			case dir.Children["expect"] != nil:
				qt.Assert(t, err, qt.IsNil)
				check(t, got, fixtureLines(dir.Children["expect"].Hunk.Body))
			default:
				t.Fatalf("fixture %q has neither expect nor error", dir.Name)
			}
		})
	}
}

func TestParseMintFixtures(t *testing.T) {
	runFixtures(t, "mint",
		func(stdout string) (interface{}, error) { return ParseMint(stdout) },
		func(t *testing.T, got interface{}, expect []string) {
			ids := got.([]ID)
			qt.Assert(t, ids, qt.HasLen, len(expect))
			for i := range expect {
				qt.Check(t, string(ids[i]), qt.Equals, expect[i])
			}
		},
	)
}

func TestParseBindFixtures(t *testing.T) {
	runFixtures(t, "bind",
		func(stdout string) (interface{}, error) { return ParseBind(stdout) },
		func(t *testing.T, got interface{}, expect []string) {
			res := got.(BindResult)
			qt.Assert(t, expect, qt.HasLen, 2)
			qt.Check(t, res.Status, qt.Equals, expect[0])
			qt.Check(t, res.Detail, qt.Equals, expect[1])
		},
	)
}

func TestParseFetchFixtures(t *testing.T) {
	runFixtures(t, "fetch",
		func(stdout string) (interface{}, error) { return ParseFetch(stdout) },
		func(t *testing.T, got interface{}, expect []string) {
			res := got.(FetchResult)
			qt.Assert(t, len(expect) >= 2, qt.IsTrue)
			qt.Check(t, "id="+string(res.ID), qt.Equals, expect[0])
			qt.Check(t, "circ="+res.Circ, qt.Equals, expect[1])
			elems := []string{}
			for _, e := range res.Elements {
				elems = append(elems, e.Name+"="+strings.ReplaceAll(e.Value, "\n", `\n`))
			}
			qt.Check(t, elems, qt.DeepEquals, expect[2:])
		},
	)
}

func TestParseGet(t *testing.T) {
	qt.Check(t, ParseGet("www.uwm.edu\nArchives Department\n"), qt.DeepEquals, []string{"www.uwm.edu", "Archives Department"})
	qt.Check(t, ParseGet(""), qt.HasLen, 0)
}

func TestParseValidate(t *testing.T) {
	ids := []ID{"13030/tf5p30086k", "13030/tf5p30086x", "13030/tf5p3009z9"}
	t.Run("mixed", func(t *testing.T) {
		vs, err := ParseValidate("id: 13030/tf5p30086k\niderr: 13030/tf5p30086x: check character should be k\n13030/tf5p3009z9\n", ids)
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, vs, qt.DeepEquals, []Validation{
			{ID: ids[0], Valid: true},
			{ID: ids[1], Valid: false, Reason: "13030/tf5p30086x: check character should be k"},
			{ID: ids[2], Valid: true},
		})
	})
	t.Run("count-mismatch", func(t *testing.T) {
		_, err := ParseValidate("id: 13030/tf5p30086k\n", ids)
		qt.Assert(t, err, qt.IsNotNil)
	})
}

func TestParseReport(t *testing.T) {
	r := ParseReport("Created:   minter for r0.zek\nTemplate:  r0.zek\n\n   (unlimited sequence)\nSize:      unlimited\n")
	qt.Check(t, r.Entries, qt.DeepEquals, []ReportEntry{
		{Key: "Created", Value: "minter for r0.zek"},
		{Key: "Template", Value: "r0.zek"},
		{Key: "Size", Value: "unlimited"},
	})
	qt.Check(t, r.Text, qt.DeepEquals, []string{"(unlimited sequence)"})
	v, ok := r.Get("Template")
	qt.Check(t, ok, qt.IsTrue)
	qt.Check(t, v, qt.Equals, "r0.zek")
	_, ok = r.Get("Missing")
	qt.Check(t, ok, qt.IsFalse)
}

func TestFetchResultLookup(t *testing.T) {
	r := FetchResult{Elements: []Element{{Name: "where", Value: "a"}, {Name: "where", Value: "b"}}}
	v, ok := r.Lookup("where")
	qt.Check(t, ok, qt.IsTrue)
	qt.Check(t, v, qt.Equals, "a")
}
