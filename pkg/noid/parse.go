package noid

import (
	"strconv"
	"strings"

	"github.com/warptools/noidwrap/noidapi"
)

// splitLines breaks output into lines, dropping the trailing newline and CRs.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// cutLabel splits "label: value" lines.
// The value has leading whitespace removed; labels never contain spaces.
func cutLabel(line string) (label, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}
	label = line[:idx]
	if strings.ContainsAny(label, " \t") {
		return "", "", false
	}
	return label, strings.TrimLeft(line[idx+1:], " \t"), true
}

// ParseMint reads the identifiers from the output of "noid mint".
// Each identifier is reported on its own "id: <identifier>" line.
//
// Errors:
//
//   - noidwrap-error-noid-output -- when a line is not an id line, or an identifier repeats
func ParseMint(stdout string) ([]ID, error) {
	var ids []ID
	seen := map[ID]struct{}{}
	for _, line := range splitLines(stdout) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, value, ok := cutLabel(line)
		if !ok || label != "id" {
			return nil, noidapi.ErrorNoidOutput("mint", line, "expected an id line")
		}
		id := ID(strings.TrimSpace(value))
		if id == "" {
			return nil, noidapi.ErrorNoidOutput("mint", line, "empty identifier")
		}
		if _, dup := seen[id]; dup {
			return nil, noidapi.ErrorNoidOutput("mint", line, "identifier minted twice")
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// BindResult is what noid says about one bind.
type BindResult struct {
	Status string // "ok" on success
	Detail string // anything after the status, and any other output
}

// ParseBind reads the output of "noid bind".
// The status line looks like "Status:  ok, 11".
// Output without a status line is taken as success, with the text kept as Detail.
//
// Errors:
//
//   - noidwrap-error-noid-output -- when the reported status is not "ok"
func ParseBind(stdout string) (BindResult, error) {
	result := BindResult{Status: "ok"}
	var rest []string
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		label, value, ok := cutLabel(trimmed)
		if ok && strings.EqualFold(label, "status") {
			status, detail, _ := strings.Cut(value, ",")
			result.Status = strings.TrimSpace(status)
			if d := strings.TrimSpace(detail); d != "" {
				rest = append(rest, d)
			}
			if result.Status != "ok" {
				return result, noidapi.ErrorNoidOutput("bind", line, "bind was not accepted")
			}
			continue
		}
		rest = append(rest, trimmed)
	}
	result.Detail = strings.Join(rest, "\n")
	return result, nil
}

// Element is one bound element of an identifier.
type Element struct {
	Name  string
	Value string
}

// FetchResult is the parsed output of "noid fetch".
type FetchResult struct {
	ID       ID
	Circ     string    // circulation record, if the identifier was minted
	Elements []Element // in the order noid reported them
	Notes    []string  // "note:" lines, e.g. when nothing is bound
}

// Lookup returns the value of the first element with the given name.
func (r FetchResult) Lookup(name string) (string, bool) {
	for _, e := range r.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// ContinuationIndent prefixes each further line of a multi-line value in fetch output.
const ContinuationIndent = "    "

// stripContinuation removes one level of continuation indent: a tab, or up to four spaces.
func stripContinuation(line string) string {
	if line[0] == '\t' {
		return line[1:]
	}
	n := 0
	for n < len(ContinuationIndent) && n < len(line) && line[n] == ' ' {
		n++
	}
	return line[n:]
}

// ParseFetch reads the labelled output of "noid fetch".
// The first labelled line is "id:", then an optional "Circ:" line, then one line per element.
// Lines starting with whitespace continue the value of the element before them,
// keeping any indentation beyond the first level and any blank lines.
//
// Errors:
//
//   - noidwrap-error-noid-output -- when the output does not start with an id line, or an element line is malformed
func ParseFetch(stdout string) (FetchResult, error) {
	var result FetchResult
	sawID := false
	for _, line := range splitLines(stdout) {
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(result.Elements) == 0 {
				if strings.TrimSpace(line) == "" {
					continue
				}
				return result, noidapi.ErrorNoidOutput("fetch", line, "continuation line without an element")
			}
			last := &result.Elements[len(result.Elements)-1]
			last.Value += "\n" + stripContinuation(line)
			continue
		}
		label, value, ok := cutLabel(line)
		if !ok {
			return result, noidapi.ErrorNoidOutput("fetch", line, "expected an element line")
		}
		switch {
		case !sawID:
			if label != "id" {
				return result, noidapi.ErrorNoidOutput("fetch", line, "expected an id line first")
			}
			result.ID = ID(strings.TrimSpace(value))
			sawID = true
		case label == "Circ" && result.Circ == "" && len(result.Elements) == 0:
			result.Circ = strings.TrimSpace(value)
		case label == "note":
			result.Notes = append(result.Notes, value)
		default:
			result.Elements = append(result.Elements, Element{Name: label, Value: strings.TrimRight(value, " \t")})
		}
	}
	if !sawID {
		return result, noidapi.ErrorNoidOutput("fetch", stdout, "no id line in output")
	}
	return result, nil
}

// ParseGet reads the unlabelled output of "noid get": one value per line.
func ParseGet(stdout string) []string {
	return splitLines(stdout)
}

// Validation is the verdict on one identifier.
type Validation struct {
	ID     ID
	Valid  bool
	Reason string // why it is invalid; empty when valid
}

// ParseValidate reads the output of "noid validate", one line per requested identifier, in order.
// Invalid identifiers are reported as "iderr: <reason>"; valid ones as "id: <identifier>" or the bare identifier.
//
// Errors:
//
//   - noidwrap-error-noid-output -- when the number of verdicts does not match the number of identifiers
func ParseValidate(stdout string, ids []ID) ([]Validation, error) {
	var lines []string
	for _, line := range splitLines(stdout) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) != len(ids) {
		return nil, noidapi.ErrorNoidOutput("validate", stdout,
			"expected "+strconv.Itoa(len(ids))+" verdicts, got "+strconv.Itoa(len(lines)))
	}
	result := make([]Validation, 0, len(ids))
	for i, line := range lines {
		v := Validation{ID: ids[i], Valid: true}
		if label, value, ok := cutLabel(line); ok && label == "iderr" {
			v.Valid = false
			v.Reason = value
		}
		result = append(result, v)
	}
	return result, nil
}

// ReportEntry is one "Key: value" line of a report.
type ReportEntry struct {
	Key   string
	Value string
}

// Report is the loosely structured output of "noid dbcreate" and "noid dbinfo".
type Report struct {
	Entries []ReportEntry
	Text    []string // lines that are not key/value pairs
}

// Get returns the value of the first entry with the given key.
func (r Report) Get(key string) (string, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// ParseReport collects "Key: value" lines and keeps everything else as text.
func ParseReport(stdout string) Report {
	var r Report
	for _, line := range splitLines(stdout) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if key, value, ok := cutLabel(trimmed); ok && value != "" {
			r.Entries = append(r.Entries, ReportEntry{Key: key, Value: strings.TrimSpace(value)})
			continue
		}
		r.Text = append(r.Text, trimmed)
	}
	return r
}
