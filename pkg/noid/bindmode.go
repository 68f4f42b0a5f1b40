package noid

import (
	"strings"

	"github.com/warptools/noidwrap/noidapi"
)

// ID is an identifier assigned by noid. It is opaque; nothing here looks inside it.
type ID string

func (id ID) String() string {
	return string(id)
}

// ElementNameProblem says why name cannot be an element name, or returns "" if it can.
// Fetch prints elements as "name: value" lines, so a name may not hold whitespace or ':'.
func ElementNameProblem(name string) string {
	switch {
	case name == "":
		return "element is empty"
	case strings.ContainsAny(name, " \t\r\n:"):
		return "element names cannot contain whitespace or ':'"
	}
	return ""
}

// BindMode is the "how" argument of "noid bind".
type BindMode string

const (
	BindNew     BindMode = "new"
	BindReplace BindMode = "replace"
	BindSet     BindMode = "set"
	BindAppend  BindMode = "append"
	BindPrepend BindMode = "prepend"
	BindAdd     BindMode = "add"
	BindInsert  BindMode = "insert"
	BindDelete  BindMode = "delete"
	BindPurge   BindMode = "purge"
	BindMint    BindMode = "mint"
)

// BindModes lists every mode noid accepts, in the order noid documents them.
var BindModes = []BindMode{
	BindNew,
	BindReplace,
	BindSet,
	BindAppend,
	BindPrepend,
	BindAdd,
	BindInsert,
	BindDelete,
	BindPurge,
	BindMint,
}

// ParseBindMode accepts a mode name. The empty string means BindSet.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when the mode is not one noid knows
func ParseBindMode(s string) (BindMode, error) {
	if s == "" {
		return BindSet, nil
	}
	m := BindMode(strings.ToLower(s))
	if !m.Valid() {
		return "", noidapi.ErrorInvalid("unknown bind mode "+s, [2]string{"mode", s})
	}
	return m, nil
}

func (m BindMode) Valid() bool {
	for _, known := range BindModes {
		if m == known {
			return true
		}
	}
	return false
}

// TakesValue reports whether the mode takes a value argument.
func (m BindMode) TakesValue() bool {
	switch m {
	case BindDelete, BindPurge:
		return false
	}
	return true
}
