package ingest

import (
	"context"
	"io/fs"
	"strings"

	"github.com/facette/natsort"
	"github.com/warpfork/go-fsx"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/metadata"
)

// Source is somewhere metadata files come from.
type Source interface {
	// List returns the paths of the metadata files to ingest, in a stable order.
	//
	// Errors:
	//
	//   - noidwrap-error-searching-filesystem -- when a directory source cannot be walked
	//   - noidwrap-error-remote-source -- when a remote source cannot be listed
	List(ctx context.Context) ([]string, error)

	// Read returns the contents of one listed file.
	Read(ctx context.Context, path string) ([]byte, error)

	// String describes the source for logs and reports.
	String() string
}

var _ Source = DirSource{}

// DirSource reads metadata files below Root in FS.
// Hidden directories are not descended into.
type DirSource struct {
	FS   fsx.FS
	Root string // "." for the whole of FS
	Name string // how to describe the source; defaults to Root
}

func (s DirSource) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Root
}

// List walks the directory tree and returns the supported metadata files in natural sort order.
//
// Errors:
//
//   - noidwrap-error-searching-filesystem -- when the walk fails
func (s DirSource) List(ctx context.Context) ([]string, error) {
	root := s.Root
	if root == "" {
		root = "."
	}
	var paths []string
	err := fsx.WalkDir(s.FS, root, func(path string, d fsx.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !metadata.Supported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, noidapi.ErrorSearchingFilesystem("metadata files in "+s.String(), err)
	}
	natsort.Sort(paths)
	return paths, nil
}

func (s DirSource) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := fs.ReadFile(s.FS, path)
	if err != nil {
		return nil, noidapi.ErrorIo("reading metadata file", path, err)
	}
	return data, nil
}
