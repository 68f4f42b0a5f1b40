//go:build linux

package healthcheck

import (
	"github.com/serum-errors/go-serum"
	"golang.org/x/sys/unix"
)

func executionAccess(path string) error {
	err := unix.Access(path, unix.X_OK)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("noidwrap does not have execution access to file {{path|q}}"),
			serum.WithDetail("path", path),
		)
	}
	return nil
}

func writeAccess(path string) error {
	err := unix.Access(path, unix.W_OK)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("noidwrap cannot write to {{path|q}}; minting and binding will fail"),
			serum.WithDetail("path", path),
		)
	}
	return nil
}
