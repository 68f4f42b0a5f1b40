package noidapi

import (
	"strconv"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeUnknown          = "noidwrap-error-unknown"
	ECodeInternal         = "noidwrap-error-internal"
	ECodeArgument         = "noidwrap-error-invalid-argument"
	ECodeConfig           = "noidwrap-error-config"
	ECodeIo               = "noidwrap-error-io"
	ECodeSerialization    = "noidwrap-error-serialization"
	ECodeNoidFailed       = "noidwrap-error-noid-failed"
	ECodeNoidUnavailable  = "noidwrap-error-noid-unavailable"
	ECodeNoidOutput       = "noidwrap-error-noid-output"
	ECodeMetadata         = "noidwrap-error-metadata"
	ECodeMapping          = "noidwrap-error-mapping"
	ECodeSearchingFS      = "noidwrap-error-searching-filesystem"
	ECodeIngest           = "noidwrap-error-ingest"
	ECodeRemoteSource     = "noidwrap-error-remote-source"
	ECodeInitialization   = "noidwrap-error-initialization"
	ECodeTracingShutdown  = "noidwrap-error-tracing-shutdown"
	ECodeMissingArguments = "noidwrap-error-missing-arguments"
)

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
//   - noidwrap-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for miscellaneous errors that an end user can do nothing about.
//
// Errors:
//
//   - noidwrap-error-internal --
func ErrorInternal(message string, cause error) error {
	if cause == nil {
		return serum.Error(ECodeInternal, serum.WithMessageLiteral(message))
	}
	return serum.Errorf(ECodeInternal, "%s: %w", message, cause)
}

// ErrorInitialization is returned when a subsystem needed by every command cannot start.
//
// Errors:
//
//   - noidwrap-error-initialization --
func ErrorInitialization(subsystem string, cause error) error {
	result := serum.Errorf(ECodeInitialization, "could not initialize %s: %w", subsystem, cause)
	addDetails(result, [][2]string{
		{"subsystem", subsystem},
	})
	return result
}

// ErrorInvalid is returned when an argument is invalid.
// The caller must format the message string.
//
// Errors:
//
//   - noidwrap-error-invalid-argument --
func ErrorInvalid(message string, deets ...[2]string) error {
	opts := make([]serum.WithConstruction, 0, len(deets)+1)
	for _, d := range deets {
		opts = append(opts, serum.WithDetail(d[0], d[1]))
	}
	opts = append(opts, serum.WithMessageLiteral(message))
	return serum.Error(ECodeArgument, opts...)
}

// ErrorMissingArguments is returned when a command is missing positional arguments.
//
// Errors:
//
//   - noidwrap-error-missing-arguments --
func ErrorMissingArguments(usage string) error {
	return serum.Error(ECodeMissingArguments,
		serum.WithMessageTemplate("missing arguments; usage: {{usage}}"),
		serum.WithDetail("usage", usage),
	)
}

// ErrorConfig is returned when the configuration file cannot be used.
//
// Errors:
//
//   - noidwrap-error-config --
func ErrorConfig(path string, cause error) error {
	result := serum.Errorf(ECodeConfig, "invalid configuration %q: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorConfigInvalid is returned when a configuration value fails validation.
//
// Errors:
//
//   - noidwrap-error-config --
func ErrorConfigInvalid(key string, reason string) error {
	return serum.Error(ECodeConfig,
		serum.WithMessageTemplate("invalid configuration value for {{key|q}}: {{reason}}"),
		serum.WithDetail("key", key),
		serum.WithDetail("reason", reason),
	)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//   - noidwrap-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo, "io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//   - noidwrap-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization, "serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorNoidFailed is returned when the noid process reports a failure,
// either through its exit status or through an error line in its output.
// The text the process wrote to stderr is carried verbatim.
//
// Errors:
//
//   - noidwrap-error-noid-failed --
func ErrorNoidFailed(subcommand string, exitCode int, stderr string, cause error) error {
	var result error
	if stderr != "" {
		result = serum.Errorf(ECodeNoidFailed, "noid %s failed: %s: %w", subcommand, stderr, cause)
	} else {
		result = serum.Errorf(ECodeNoidFailed, "noid %s failed: %w", subcommand, cause)
	}
	addDetails(result, [][2]string{
		{"subcommand", subcommand},
		{"exitCode", strconv.Itoa(exitCode)},
		{"stderr", stderr},
	})
	return result
}

// ErrorNoidUnavailable is returned when the noid executable could not be started at all.
//
// Errors:
//
//   - noidwrap-error-noid-unavailable --
func ErrorNoidUnavailable(path string, cause error) error {
	result := serum.Errorf(ECodeNoidUnavailable, "cannot execute noid at %q: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorNoidOutput is returned when the output of the noid process cannot be understood.
//
// Errors:
//
//   - noidwrap-error-noid-output --
func ErrorNoidOutput(subcommand string, line string, reason string) error {
	return serum.Error(ECodeNoidOutput,
		serum.WithMessageTemplate("unexpected output from noid {{subcommand}}: {{reason}}: {{line|q}}"),
		serum.WithDetail("subcommand", subcommand),
		serum.WithDetail("line", line),
		serum.WithDetail("reason", reason),
	)
}

// ErrorMetadata is returned when a metadata file cannot be read or decoded.
//
// Errors:
//
//   - noidwrap-error-metadata --
func ErrorMetadata(path string, cause error) error {
	result := serum.Errorf(ECodeMetadata, "metadata file %q: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorMetadataUnsupported is returned for metadata files in a format we don't decode.
//
// Errors:
//
//   - noidwrap-error-metadata --
func ErrorMetadataUnsupported(path string) error {
	return serum.Error(ECodeMetadata,
		serum.WithMessageTemplate("unsupported metadata file format: {{path|q}}"),
		serum.WithDetail("path", path),
	)
}

// ErrorMapping is returned when a field mapping entry is malformed.
//
// Errors:
//
//   - noidwrap-error-mapping --
func ErrorMapping(entry string, reason string) error {
	return serum.Error(ECodeMapping,
		serum.WithMessageTemplate("invalid field mapping {{entry|q}}: {{reason}}"),
		serum.WithDetail("entry", entry),
		serum.WithDetail("reason", reason),
	)
}

// ErrorSearchingFilesystem is returned when an error occurs during a directory walk
//
// Errors:
//
//   - noidwrap-error-searching-filesystem --
func ErrorSearchingFilesystem(searchingFor string, cause error) error {
	result := serum.Errorf(ECodeSearchingFS,
		"error while searching filesystem for %s: %w", searchingFor, cause)
	addDetails(result, [][2]string{
		{"searchingFor", searchingFor},
	})
	return result
}

// ErrorIngest is returned when binding the contents of one metadata file fails.
//
// Errors:
//
//   - noidwrap-error-ingest --
func ErrorIngest(path string, cause error) error {
	result := serum.Errorf(ECodeIngest, "ingest of %q failed: %w", path, cause)
	addDetails(result, [][2]string{
		{"path", path},
	})
	return result
}

// ErrorIngestIncomplete is returned when some metadata files could not be ingested.
// The cause holds every per-file failure.
//
// Errors:
//
//   - noidwrap-error-ingest --
func ErrorIngestIncomplete(failed int, total int, cause error) error {
	result := serum.Errorf(ECodeIngest, "%d of %d metadata files failed to ingest: %w", failed, total, cause)
	addDetails(result, [][2]string{
		{"failed", strconv.Itoa(failed)},
		{"total", strconv.Itoa(total)},
	})
	return result
}

// ErrorRemoteSource is returned when a remote metadata source (e.g. s3) cannot be read.
//
// Errors:
//
//   - noidwrap-error-remote-source --
func ErrorRemoteSource(location string, cause error) error {
	result := serum.Errorf(ECodeRemoteSource, "remote source %q: %w", location, cause)
	addDetails(result, [][2]string{
		{"location", location},
	})
	return result
}

// addDetails is a helper method to get around the fact that serum.Errorf
// has no way to attach details at construction.
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
