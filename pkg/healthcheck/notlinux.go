//go:build !linux

package healthcheck

import "github.com/serum-errors/go-serum"

func executionAccess(path string) error {
	return serum.Error(CodeRunAmbiguous, serum.WithMessageLiteral("Execution access detection not implemented for non-Linux systems"))
}

func writeAccess(path string) error {
	return serum.Error(CodeRunAmbiguous, serum.WithMessageLiteral("Write access detection not implemented for non-Linux systems"))
}
