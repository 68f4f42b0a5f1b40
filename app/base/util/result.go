package util

import (
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/urfave/cli/v2"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/noid"
)

// SetResult records n as the command's result. It is printed after the command when --json is given.
func SetResult(c *cli.Context, n datamodel.Node) {
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata["result"] = n
}

// BuildResult assembles a map node with fn and records it with SetResult.
//
// Errors:
//
//   - noidwrap-error-serialization -- when the result cannot be assembled
func BuildResult(c *cli.Context, fn func(ma datamodel.MapAssembler)) error {
	n, err := qp.BuildMap(basicnode.Prototype.Any, 0, fn)
	if err != nil {
		return noidapi.ErrorSerialization("building command result", err)
	}
	SetResult(c, n)
	return nil
}

// Strings assembles a list of strings.
func Strings(ss []string) qp.Assemble {
	return qp.List(int64(len(ss)), func(la datamodel.ListAssembler) {
		for _, s := range ss {
			qp.ListEntry(la, qp.String(s))
		}
	})
}

func IDs(ids []noid.ID) qp.Assemble {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = string(id)
	}
	return Strings(ss)
}

// Elements assembles bound elements as a list of {"name", "value"} maps, keeping their order.
func Elements(elems []noid.Element) qp.Assemble {
	return qp.List(int64(len(elems)), func(la datamodel.ListAssembler) {
		for _, e := range elems {
			e := e
			qp.ListEntry(la, qp.Map(2, func(ma datamodel.MapAssembler) {
				qp.MapEntry(ma, "name", qp.String(e.Name))
				qp.MapEntry(ma, "value", qp.String(e.Value))
			}))
		}
	})
}

// Report assembles a dbcreate or dbinfo report.
// Entries become a list rather than a map, since noid may repeat keys.
func Report(r noid.Report) qp.Assemble {
	return qp.Map(2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "entries", qp.List(int64(len(r.Entries)), func(la datamodel.ListAssembler) {
			for _, e := range r.Entries {
				e := e
				qp.ListEntry(la, qp.Map(2, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "key", qp.String(e.Key))
					qp.MapEntry(ma, "value", qp.String(e.Value))
				}))
			}
		}))
		qp.MapEntry(ma, "text", Strings(r.Text))
	})
}
