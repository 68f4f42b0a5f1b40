package tracing

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used by noidwrap
const (
	AttrKeyNoidwrapErrorCode      = "noidwrap.error.code"
	AttrKeyNoidwrapExecName       = "noidwrap.exec.name"
	AttrKeyNoidwrapExecSubcommand = "noidwrap.exec.subcommand"
	AttrKeyNoidwrapExecExitCode   = "noidwrap.exec.exitcode"
	AttrKeyNoidwrapIdentifier     = "noidwrap.noid.id"
	AttrKeyNoidwrapMintCount      = "noidwrap.noid.mint.count"
	AttrKeyNoidwrapIngestRunID    = "noidwrap.ingest.run_id"
	AttrKeyNoidwrapIngestPath     = "noidwrap.ingest.path"
)

// Attribute values
const (
	AttrValueExecNameNoid = "noid"
)

// Enumerated attributes
var (
	AttrFullExecNameNoid = attribute.String(AttrKeyNoidwrapExecName, AttrValueExecNameNoid)
)
