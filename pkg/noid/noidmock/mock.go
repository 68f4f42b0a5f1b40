// Package noidmock is an in-memory stand-in for the noid executable.
// It speaks noid's output format so the real parsers get exercised.
package noidmock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/noid"
)

var _ noid.Runner = &Runner{}

// Runner emulates a minter database.
// Minted identifiers are NAAN + "/" + Prefix + a sequence number.
type Runner struct {
	NAAN   string
	Prefix string

	// Fail, if set, makes Run fail for that subcommand with the given stderr.
	Fail map[string]string

	Calls [][]string // every argument list Run was given, in order

	created  bool
	template string
	seq      int
	held     map[noid.ID]bool
	bindings map[noid.ID][]noid.Element
}

// New returns a Runner with a database already created.
func New() *Runner {
	return &Runner{
		NAAN:     "99999",
		Prefix:   "fk4",
		created:  true,
		template: "fk4.zek",
	}
}

// CallsTo returns the argument lists of the calls to one subcommand.
func (r *Runner) CallsTo(subcommand string) [][]string {
	var result [][]string
	for _, c := range r.Calls {
		if len(c) > 0 && c[0] == subcommand {
			result = append(result, c)
		}
	}
	return result
}

func (r *Runner) Run(ctx context.Context, args ...string) (noid.Output, error) {
	r.Calls = append(r.Calls, append([]string(nil), args...))
	if len(args) == 0 {
		return r.fail("", "error: no command given")
	}
	if stderr, ok := r.Fail[args[0]]; ok {
		return r.fail(args[0], stderr)
	}
	if r.bindings == nil {
		r.bindings = map[noid.ID][]noid.Element{}
	}
	if r.held == nil {
		r.held = map[noid.ID]bool{}
	}
	if !r.created && args[0] != "dbcreate" {
		return r.fail(args[0], "error: no minter database found")
	}
	switch args[0] {
	case "dbcreate":
		return r.dbcreate(args[1:])
	case "mint":
		return r.mint(args[1:])
	case "bind":
		return r.bind(args[1:])
	case "fetch":
		return r.fetch(args[1:])
	case "get":
		return r.get(args[1:])
	case "validate":
		return r.validate(args[1:])
	case "hold":
		return r.hold(args[1:])
	case "dbinfo":
		return noid.Output{Stdout: fmt.Sprintf("Template:  %s\nMinted:    %d\n", r.template, r.seq)}, nil
	}
	return r.fail(args[0], "error: unknown command "+args[0])
}

func (r *Runner) fail(subcommand, stderr string) (noid.Output, error) {
	out := noid.Output{Stderr: stderr + "\n"}
	return out, noidapi.ErrorNoidFailed(subcommand, 1, stderr, fmt.Errorf("exit status 1"))
}

func (r *Runner) dbcreate(args []string) (noid.Output, error) {
	if len(args) < 1 {
		return r.fail("dbcreate", "error: dbcreate requires a template")
	}
	r.created = true
	r.template = args[0]
	r.seq = 0
	r.bindings = map[noid.ID][]noid.Element{}
	return noid.Output{Stdout: fmt.Sprintf("Created:   minter for %s\nTemplate:  %s\nSize:      unlimited\n", args[0], args[0])}, nil
}

func (r *Runner) mint(args []string) (noid.Output, error) {
	n := 1
	if len(args) > 0 {
		var err error
		n, err = strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return r.fail("mint", "error: mint count must be a positive integer")
		}
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		var id noid.ID
		for {
			r.seq++
			id = noid.ID(fmt.Sprintf("%s/%s%d", r.NAAN, r.Prefix, r.seq))
			if !r.held[id] {
				break
			}
		}
		fmt.Fprintf(&sb, "id: %s\n", id)
	}
	sb.WriteString("\n")
	return noid.Output{Stdout: sb.String()}, nil
}

func (r *Runner) bind(args []string) (noid.Output, error) {
	if len(args) < 3 {
		return r.fail("bind", "error: bind requires how, id and element")
	}
	how, id, elem := noid.BindMode(args[0]), noid.ID(args[1]), args[2]
	value := ""
	if len(args) > 3 {
		value = args[3]
	}
	elems := r.bindings[id]
	idx := -1
	for i, e := range elems {
		if e.Name == elem {
			idx = i
			break
		}
	}
	switch how {
	case noid.BindSet, noid.BindReplace, noid.BindNew:
		if how == noid.BindNew && idx >= 0 {
			return r.fail("bind", fmt.Sprintf("error: %s %s already bound", id, elem))
		}
		if how == noid.BindReplace && idx < 0 {
			return r.fail("bind", fmt.Sprintf("error: %s %s not bound", id, elem))
		}
		if idx >= 0 {
			elems[idx].Value = value
		} else {
			elems = append(elems, noid.Element{Name: elem, Value: value})
		}
	case noid.BindAdd, noid.BindAppend:
		if idx >= 0 && how == noid.BindAppend {
			elems[idx].Value += value
		} else {
			elems = append(elems, noid.Element{Name: elem, Value: value})
		}
	case noid.BindInsert, noid.BindPrepend:
		if idx >= 0 && how == noid.BindPrepend {
			elems[idx].Value = value + elems[idx].Value
		} else {
			elems = append([]noid.Element{{Name: elem, Value: value}}, elems...)
		}
	case noid.BindDelete:
		if idx >= 0 {
			elems = append(elems[:idx], elems[idx+1:]...)
		}
	case noid.BindPurge:
		elems = nil
	default:
		return r.fail("bind", "error: unsupported bind mode "+string(how))
	}
	r.bindings[id] = elems
	return noid.Output{Stdout: fmt.Sprintf("Status:  ok, %d\n", len(value))}, nil
}

func (r *Runner) selected(id noid.ID, names []string) []noid.Element {
	elems := r.bindings[id]
	if len(names) == 0 {
		return elems
	}
	var result []noid.Element
	for _, name := range names {
		for _, e := range elems {
			if e.Name == name {
				result = append(result, e)
			}
		}
	}
	return result
}

func (r *Runner) fetch(args []string) (noid.Output, error) {
	if len(args) < 1 {
		return r.fail("fetch", "error: fetch requires an id")
	}
	id := noid.ID(args[0])
	var sb strings.Builder
	fmt.Fprintf(&sb, "id:    %s\n", id)
	elems := r.selected(id, args[1:])
	if len(elems) == 0 {
		fmt.Fprintf(&sb, "note: no elements bound under %s.\n", id)
	}
	for _, e := range elems {
		lines := strings.Split(e.Value, "\n")
		fmt.Fprintf(&sb, "%s: %s\n", e.Name, lines[0])
		for _, cont := range lines[1:] {
			fmt.Fprintf(&sb, "%s%s\n", noid.ContinuationIndent, cont)
		}
	}
	sb.WriteString("\n")
	return noid.Output{Stdout: sb.String()}, nil
}

func (r *Runner) get(args []string) (noid.Output, error) {
	if len(args) < 1 {
		return r.fail("get", "error: get requires an id")
	}
	var sb strings.Builder
	for _, e := range r.selected(noid.ID(args[0]), args[1:]) {
		fmt.Fprintf(&sb, "%s\n", e.Value)
	}
	return noid.Output{Stdout: sb.String()}, nil
}

// validate accepts any identifier carrying this minter's NAAN and prefix.
func (r *Runner) validate(args []string) (noid.Output, error) {
	if len(args) < 2 {
		return r.fail("validate", "error: validate requires a template and ids")
	}
	prefix := r.NAAN + "/" + r.Prefix
	var sb strings.Builder
	for _, id := range args[1:] {
		if strings.HasPrefix(id, prefix) {
			fmt.Fprintf(&sb, "id: %s\n", id)
		} else {
			fmt.Fprintf(&sb, "iderr: %s: does not match template %s\n", id, r.template)
		}
	}
	return noid.Output{Stdout: sb.String()}, nil
}

func (r *Runner) hold(args []string) (noid.Output, error) {
	if len(args) < 2 || (args[0] != "set" && args[0] != "release") {
		return r.fail("hold", "error: hold requires set|release and ids")
	}
	for _, id := range args[1:] {
		r.held[noid.ID(id)] = args[0] == "set"
	}
	return noid.Output{Stdout: fmt.Sprintf("ok: %d hold(s) %s\n", len(args)-1, args[0])}, nil
}

// Bound returns a sorted copy of everything bound, for assertions.
func (r *Runner) Bound() map[noid.ID][]noid.Element {
	result := make(map[noid.ID][]noid.Element, len(r.bindings))
	for id, elems := range r.bindings {
		cp := append([]noid.Element(nil), elems...)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })
		result[id] = cp
	}
	return result
}
