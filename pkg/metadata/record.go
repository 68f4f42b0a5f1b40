/*
Package metadata loads the metadata files that get bound to identifiers,
and maps their fields onto noid element names.

Records are held as IPLD data model nodes whatever format they came from,
so JSON and YAML files are looked up the same way.
*/
package metadata

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"gopkg.in/yaml.v3"

	"github.com/warptools/noidwrap/noidapi"
)

// Extensions lists the file extensions LoadRecord understands.
var Extensions = []string{".json", ".yaml", ".yml"}

// Supported reports whether path has one of the Extensions.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Record is one decoded metadata file. Node is always a map.
type Record struct {
	Path string
	Node datamodel.Node
}

// LoadRecord reads and decodes a metadata file from fsys.
//
// Errors:
//
//   - noidwrap-error-io -- when the file cannot be read
//   - noidwrap-error-metadata -- when the file cannot be decoded, or is not a map
func LoadRecord(fsys fs.FS, path string) (Record, error) {
	if !Supported(path) {
		return Record{}, noidapi.ErrorMetadataUnsupported(path)
	}
	data, err := fs.ReadFile(fsys, strings.TrimPrefix(path, "/"))
	if err != nil {
		return Record{}, noidapi.ErrorIo("reading metadata file", path, err)
	}
	return DecodeRecord(path, data)
}

// DecodeRecord decodes data in the format implied by the extension of path.
//
// Errors:
//
//   - noidwrap-error-metadata -- when the data cannot be decoded, is not a map, or the format is unknown
func DecodeRecord(path string, data []byte) (Record, error) {
	var (
		n   datamodel.Node
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		n, err = ipld.Decode(data, json.Decode)
	case ".yaml", ".yml":
		n, err = decodeYAML(data)
	default:
		return Record{}, noidapi.ErrorMetadataUnsupported(path)
	}
	if err != nil {
		return Record{}, noidapi.ErrorMetadata(path, err)
	}
	if n.Kind() != datamodel.Kind_Map {
		return Record{}, noidapi.ErrorMetadata(path, fmt.Errorf("top level must be a map, found %s", n.Kind()))
	}
	return Record{Path: path, Node: n}, nil
}

func decodeYAML(data []byte) (datamodel.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a map")
	}
	fn, err := assembleYAML(root)
	if err != nil {
		return nil, err
	}
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := buildInto(nb, fn); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

// buildInto runs fn against na, turning the panics qp uses for errors back into errors.
func buildInto(na datamodel.NodeAssembler, fn qp.Assemble) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn(na)
	return nil
}

// assembleYAML converts a yaml node tree into a qp assembly, keeping map key order.
func assembleYAML(n *yaml.Node) (qp.Assemble, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return assembleYAML(n.Alias)
	case yaml.MappingNode:
		type entry struct {
			key string
			fn  qp.Assemble
		}
		entries := make([]entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: map keys must be scalars", k.Line)
			}
			fn, err := assembleYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry{k.Value, fn})
		}
		return qp.Map(int64(len(entries)), func(ma datamodel.MapAssembler) {
			for _, e := range entries {
				qp.MapEntry(ma, e.key, e.fn)
			}
		}), nil
	case yaml.SequenceNode:
		items := make([]qp.Assemble, 0, len(n.Content))
		for _, c := range n.Content {
			fn, err := assembleYAML(c)
			if err != nil {
				return nil, err
			}
			items = append(items, fn)
		}
		return qp.List(int64(len(items)), func(la datamodel.ListAssembler) {
			for _, fn := range items {
				qp.ListEntry(la, fn)
			}
		}), nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return qp.Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return qp.Bool(b), nil
		case "!!int":
			var i int64
			if err := n.Decode(&i); err != nil {
				return nil, err
			}
			return qp.Int(i), nil
		case "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, err
			}
			return qp.Float(f), nil
		default:
			return qp.String(n.Value), nil
		}
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

// Lookup finds the value at a dotted field path, such as "creator.name" or "subjects.0".
// Strings come back verbatim, other scalars formatted, and lists and maps as compact JSON.
// A missing field, or a null, is reported as absent.
//
// Errors:
//
//   - noidwrap-error-metadata -- when the value cannot be rendered as text
func (r Record) Lookup(field string) (string, bool, error) {
	n := r.Node
	for _, seg := range strings.Split(field, ".") {
		if n == nil {
			return "", false, nil
		}
		var err error
		switch n.Kind() {
		case datamodel.Kind_Map:
			n, err = n.LookupByString(seg)
		case datamodel.Kind_List:
			idx, convErr := strconv.ParseInt(seg, 10, 64)
			if convErr != nil {
				return "", false, nil
			}
			n, err = n.LookupByIndex(idx)
		default:
			return "", false, nil
		}
		if err != nil {
			return "", false, nil
		}
	}
	if n == nil {
		return "", false, nil
	}
	switch n.Kind() {
	case datamodel.Kind_Null:
		return "", false, nil
	case datamodel.Kind_String:
		s, err := n.AsString()
		return s, err == nil, err
	case datamodel.Kind_Int:
		i, err := n.AsInt()
		return strconv.FormatInt(i, 10), err == nil, err
	case datamodel.Kind_Float:
		f, err := n.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64), err == nil, err
	case datamodel.Kind_Bool:
		b, err := n.AsBool()
		return strconv.FormatBool(b), err == nil, err
	case datamodel.Kind_Map, datamodel.Kind_List:
		var buf bytes.Buffer
		if err := dagjson.Encode(n, &buf); err != nil {
			return "", false, noidapi.ErrorMetadata(r.Path, err)
		}
		return buf.String(), true, nil
	}
	return "", false, noidapi.ErrorMetadata(r.Path, fmt.Errorf("field %q holds a %s, which cannot be bound", field, n.Kind()))
}
