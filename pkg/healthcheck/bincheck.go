package healthcheck

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/serum-errors/go-serum"
)

// BinCheck looks for the noid executable.
// Path is either a bare name, looked up on $PATH, or a path to the file.
type BinCheck struct {
	Path string
}

func (c *BinCheck) String() string {
	return fmt.Sprintf("Binary Path Check: %q", c.Path)
}

func isExecutable(m fs.FileMode) bool {
	return m&0111 != 0
}

func isSymlink(m fs.FileMode) bool {
	return m&fs.ModeSymlink == fs.ModeSymlink
}

func followLink(path string) string {
	fi, err := os.Lstat(path)
	if err != nil {
		return ""
	}
	for isSymlink(fi.Mode()) {
		path, err = os.Readlink(path)
		if err != nil {
			return ""
		}
		fi, err = os.Lstat(path)
		if err != nil {
			return ""
		}
	}
	return path
}

// Run checks that an executable can be found at, or for, the configured path.
//
// Errors:
//
//   - noidwrap-healthcheck-run-okay -- when the binary is found
//   - noidwrap-healthcheck-run-fail -- when the binary cannot be found or run
func (c *BinCheck) Run(ctx context.Context) error {
	path, err := exec.LookPath(c.Path)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("Could not find binary {{path|q}}"),
			serum.WithDetail("path", c.Path),
		)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("Could not find binary at path {{path|q}}"),
			serum.WithDetail("path", path),
		)
	}
	mode := fi.Mode()
	if !mode.IsRegular() {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("file {{path|q}} is not a regular file"),
			serum.WithDetail("path", path),
		)
	}
	if !isExecutable(mode) {
		return serum.Error(CodeRunFailure,
			serum.WithMessageTemplate("file {{path|q}} is not executable"),
			serum.WithDetail("path", path),
		)
	}

	if err := executionAccess(path); err != nil {
		return err
	}

	if fi, _ := os.Lstat(path); fi != nil && isSymlink(fi.Mode()) {
		return serum.Errorf(CodeRunOkay, "symlink: %q -> %q", path, followLink(path))
	}

	return serum.Errorf(CodeRunOkay, "path: %s", path)
}
