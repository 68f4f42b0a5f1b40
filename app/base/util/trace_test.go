package util

import (
	"testing"

	qt "github.com/frankban/quicktest"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

func TestNewResource(t *testing.T) {
	res, err := newResource("v0.0.0-test")
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, res.SchemaURL(), qt.Equals, semconv.SchemaURL)
	name, ok := res.Set().Value(semconv.ServiceNameKey)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Check(t, name.AsString(), qt.Equals, Module)
}
