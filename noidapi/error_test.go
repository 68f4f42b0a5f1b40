package noidapi

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
)

func detail(err error, key string) (string, bool) {
	for _, d := range serum.Details(err) {
		if d[0] == key {
			return d[1], true
		}
	}
	return "", false
}

func TestErrorNoidFailed(t *testing.T) {
	cause := errors.New("exit status 2")
	t.Run("carries-stderr", func(t *testing.T) {
		err := ErrorNoidFailed("mint", 2, "error: no minter database", cause)
		qt.Assert(t, serum.Code(err), qt.Equals, ECodeNoidFailed)
		qt.Check(t, err.Error(), qt.Contains, "error: no minter database")
		qt.Check(t, errors.Is(err, cause), qt.IsTrue)
		v, ok := detail(err, "exitCode")
		qt.Check(t, ok, qt.IsTrue)
		qt.Check(t, v, qt.Equals, "2")
		v, _ = detail(err, "subcommand")
		qt.Check(t, v, qt.Equals, "mint")
	})
	t.Run("no-stderr", func(t *testing.T) {
		err := ErrorNoidFailed("bind", -1, "", cause)
		qt.Check(t, err.Error(), qt.Contains, "noid bind failed")
		qt.Check(t, err.Error(), qt.Contains, "exit status 2")
	})
}

func TestErrorInvalid(t *testing.T) {
	err := ErrorInvalid("count must be positive", [2]string{"count", "0"})
	qt.Assert(t, serum.Code(err), qt.Equals, ECodeArgument)
	qt.Check(t, serum.Message(err), qt.Equals, "count must be positive")
	v, ok := detail(err, "count")
	qt.Check(t, ok, qt.IsTrue)
	qt.Check(t, v, qt.Equals, "0")
}

func TestErrorConfig(t *testing.T) {
	cause := errors.New("yaml: line 3: did not find expected key")
	err := ErrorConfig("config.yaml", cause)
	qt.Assert(t, serum.Code(err), qt.Equals, ECodeConfig)
	qt.Check(t, errors.Is(err, cause), qt.IsTrue)
	v, _ := detail(err, "path")
	qt.Check(t, v, qt.Equals, "config.yaml")
}

func TestErrorInternal(t *testing.T) {
	err := ErrorInternal("results printed before the run", nil)
	qt.Assert(t, serum.Code(err), qt.Equals, ECodeInternal)
	qt.Check(t, serum.Message(err), qt.Equals, "results printed before the run")

	cause := errors.New("template: help:1: unexpected EOF")
	err = ErrorInternal("help template failed", cause)
	qt.Check(t, serum.Code(err), qt.Equals, ECodeInternal)
	qt.Check(t, errors.Is(err, cause), qt.IsTrue)
}

func TestErrorInitialization(t *testing.T) {
	cause := errors.New("cannot merge resource due to conflicting Schema URL")
	err := ErrorInitialization("tracing resource", cause)
	qt.Assert(t, serum.Code(err), qt.Equals, ECodeInitialization)
	qt.Check(t, err.Error(), qt.Contains, "could not initialize tracing resource")
	qt.Check(t, errors.Is(err, cause), qt.IsTrue)
	v, _ := detail(err, "subsystem")
	qt.Check(t, v, qt.Equals, "tracing resource")
}
