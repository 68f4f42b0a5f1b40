/*
Package ingest binds the contents of metadata files to noid identifiers.

Each file is decoded, its mapped fields are picked out, and those are bound
under the identifier named in the file (or a freshly minted one).
Files are handled one at a time, in the order the Source lists them.
*/
package ingest

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/metadata"
	"github.com/warptools/noidwrap/pkg/noid"
	"github.com/warptools/noidwrap/pkg/tracing"
)

const LOG_TAG = "ingest"

// Reasons a file can be skipped.
const (
	SkipEmptyMapping = "mapping is empty"
	SkipNoFields     = "no mapped fields present"
	SkipNoIdentifier = "no identifier field and minting is off"
)

// Ingester holds the settings for one ingest run.
type Ingester struct {
	Client  *noid.Client
	Mapping metadata.Mapping

	// IDField names the record field holding the identifier to bind under.
	// Records without it are skipped, unless MintMissing is set.
	IDField     string
	MintMissing bool

	Mode            noid.BindMode // empty means noid.BindSet
	ContinueOnError bool
}

// FileReport is what happened to one metadata file.
type FileReport struct {
	Path     string
	ID       noid.ID
	Minted   bool
	Elements []noid.Element // what was bound
	Skipped  string         // why nothing was bound; empty otherwise
	Err      error
}

// Report covers a whole ingest run.
type Report struct {
	RunID  string
	Source string
	Files  []FileReport
}

// Count returns how many files were bound, skipped, and failed.
func (r Report) Count() (bound, skipped, failed int) {
	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			failed++
		case f.Skipped != "":
			skipped++
		default:
			bound++
		}
	}
	return
}

// Ingest processes every file the source lists.
// The report is returned even when there is an error, and covers the files handled so far.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when the bind mode is unknown
//   - noidwrap-error-searching-filesystem -- when the source cannot be listed
//   - noidwrap-error-remote-source -- when the source cannot be listed
//   - noidwrap-error-ingest -- when a file fails, or with ContinueOnError, when any files failed
func (in *Ingester) Ingest(ctx context.Context, src Source) (report Report, err error) {
	report = Report{
		RunID:  uuid.New().String(),
		Source: src.String(),
	}
	mode := in.Mode
	if mode == "" {
		mode = noid.BindSet
	}
	if !mode.Valid() {
		return report, noidapi.ErrorInvalid("unknown bind mode "+string(mode), [2]string{"mode", string(mode)})
	}

	ctx, span := tracing.StartFn(ctx, "Ingest", trace.WithAttributes(
		attribute.String(tracing.AttrKeyNoidwrapIngestRunID, report.RunID),
	))
	defer func() { tracing.EndWithStatus(span, err) }()
	logger := logging.Ctx(ctx)

	paths, err := src.List(ctx)
	if err != nil {
		return report, err
	}
	logger.Info(LOG_TAG, "run %s: %d metadata file(s) in %s", report.RunID, len(paths), src)

	var failures *multierror.Error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fr := in.ingestFile(ctx, mode, src, path)
		report.Files = append(report.Files, fr)
		switch {
		case fr.Err != nil:
			logger.Warn(LOG_TAG, "%s: %s", path, fr.Err)
			if !in.ContinueOnError {
				return report, fr.Err
			}
			failures = multierror.Append(failures, fr.Err)
		case fr.Skipped != "":
			logger.Debug(LOG_TAG, "%s: skipped: %s", path, fr.Skipped)
		default:
			logger.Debug(LOG_TAG, "%s: bound %d element(s) to %s", path, len(fr.Elements), fr.ID)
		}
	}
	if failures != nil {
		return report, noidapi.ErrorIngestIncomplete(failures.Len(), len(paths), failures.ErrorOrNil())
	}
	return report, nil
}

func (in *Ingester) ingestFile(ctx context.Context, mode noid.BindMode, src Source, path string) (fr FileReport) {
	fr.Path = path
	ctx, span := tracing.StartFn(ctx, "ingestFile", trace.WithAttributes(
		attribute.String(tracing.AttrKeyNoidwrapIngestPath, path),
	))
	defer func() { tracing.EndWithStatus(span, fr.Err) }()

	data, err := src.Read(ctx, path)
	if err != nil {
		fr.Err = noidapi.ErrorIngest(path, err)
		return
	}
	rec, err := metadata.DecodeRecord(path, data)
	if err != nil {
		fr.Err = noidapi.ErrorIngest(path, err)
		return
	}
	if in.Mapping.Empty() {
		fr.Skipped = SkipEmptyMapping
		return
	}
	elems, err := in.Mapping.Elements(rec)
	if err != nil {
		fr.Err = noidapi.ErrorIngest(path, err)
		return
	}
	if len(elems) == 0 {
		fr.Skipped = SkipNoFields
		return
	}

	if in.IDField != "" {
		id, ok, err := rec.Lookup(in.IDField)
		if err != nil {
			fr.Err = noidapi.ErrorIngest(path, err)
			return
		}
		if ok && id != "" {
			fr.ID = noid.ID(id)
		}
	}
	if fr.ID == "" {
		if !in.MintMissing {
			fr.Skipped = SkipNoIdentifier
			return
		}
		ids, err := in.Client.Mint(ctx, 1)
		if err != nil {
			fr.Err = noidapi.ErrorIngest(path, err)
			return
		}
		fr.ID, fr.Minted = ids[0], true
	}
	span.SetAttributes(attribute.String(tracing.AttrKeyNoidwrapIdentifier, string(fr.ID)))

	if err := in.Client.BindAll(ctx, mode, fr.ID, elems); err != nil {
		fr.Err = noidapi.ErrorIngest(path, err)
		return
	}
	fr.Elements = elems
	return
}
