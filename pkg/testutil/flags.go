package testutil

import (
	"flag"
	"runtime"
	"testing"
)

var FlagNoExec = flag.Bool("testutil.noexec", false, "Skip tests that start external processes")

// RequireExec skips the test when it may not start processes,
// or when the platform cannot run the shell scripts used as fake executables.
func RequireExec(t testing.TB) {
	t.Helper()
	if *FlagNoExec {
		t.Skip("process execution disabled by -testutil.noexec")
	}
	if runtime.GOOS == "windows" {
		t.Skip("fake executables are shell scripts")
	}
}
