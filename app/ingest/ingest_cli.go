// Package ingestcli holds the command that binds a collection of metadata files.
package ingestcli

import (
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/urfave/cli/v2"
	"github.com/warpfork/go-fsx/osfs"

	appbase "github.com/warptools/noidwrap/app/base"
	"github.com/warptools/noidwrap/app/base/util"
	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/ingest"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/metadata"
	"github.com/warptools/noidwrap/pkg/noid"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, ingestCmdDef)
}

const usage = "noidwrap ingest [options] <dir> | noidwrap ingest [options] --s3.bucket BUCKET"

var ingestCmdDef = &cli.Command{
	Name:      "ingest",
	Usage:     "Bind the fields of every metadata file in a directory or S3 prefix",
	ArgsUsage: "<dir>",
	Description: heredoc.Doc(`
		Walks dir (or lists the objects under an S3 prefix) for .json, .yaml and .yml files.
		For each one, the fields named in the mapping are bound to the identifier
		found in the id field, or to a freshly minted identifier with --mint-missing.

		Files are handled one at a time, in natural sort order.
		Hidden files and directories are skipped.
		With an empty mapping, nothing is bound and nothing is minted.
	`),
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "map",
			Usage: "Bind record field to noid element, as `FIELD=ELEMENT`; FIELD may be a dotted path",
		},
		&cli.StringFlag{
			Name:      "mapping",
			Usage:     "Read field mappings from a YAML `FILE`",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "id-field",
			Usage: "Record `FIELD` holding the identifier to bind under",
		},
		&cli.BoolFlag{
			Name:  "mint-missing",
			Usage: "Mint an identifier for records without one",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "How to bind each field",
			Value: string(noid.BindSet),
		},
		&cli.BoolFlag{
			Name:  "continue",
			Usage: "Keep going past files that fail, and report them all at the end",
		},
		&cli.StringFlag{
			Name:  "s3.bucket",
			Usage: "Read metadata files from this S3 `BUCKET` instead of a directory",
		},
		&cli.StringFlag{
			Name:  "s3.prefix",
			Usage: "Only read objects under this key `PREFIX`",
		},
		&cli.StringFlag{
			Name:  "s3.region",
			Usage: "AWS `REGION` of the bucket",
		},
		&cli.StringFlag{
			Name:  "s3.endpoint",
			Usage: "`URL` of an S3-compatible service to use instead of AWS",
		},
	},
	Action: util.StandardMiddleware(cmdIngest),
}

// loadMapping combines the mapping file, if any, with the --map pairs.
func loadMapping(c *cli.Context) (metadata.Mapping, error) {
	var m metadata.Mapping
	if path := c.String("mapping"); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return m, noidapi.ErrorIo("resolving mapping file path", path, err)
		}
		m, err = metadata.LoadMappingFile(abs)
		if err != nil {
			return m, err
		}
	}
	pairs, err := metadata.ParseMapping(c.StringSlice("map"))
	if err != nil {
		return m, err
	}
	return m.Merge(pairs)
}

func source(c *cli.Context) (ingest.Source, error) {
	if bucket := c.String("s3.bucket"); bucket != "" {
		if c.Args().Present() {
			return nil, noidapi.ErrorInvalid("give either a directory or --s3.bucket, not both", [2]string{"usage", usage})
		}
		return ingest.NewS3Source(c.Context, ingest.S3Config{
			Bucket:   bucket,
			Prefix:   c.String("s3.prefix"),
			Region:   c.String("s3.region"),
			Endpoint: c.String("s3.endpoint"),
		})
	}
	if c.Args().Len() != 1 {
		return nil, noidapi.ErrorMissingArguments(usage)
	}
	dir := c.Args().First()
	return ingest.DirSource{FS: osfs.DirFS(dir), Root: ".", Name: dir}, nil
}

func cmdIngest(c *cli.Context) error {
	mode, err := noid.ParseBindMode(c.String("mode"))
	if err != nil {
		return err
	}
	mapping, err := loadMapping(c)
	if err != nil {
		return err
	}
	src, err := source(c)
	if err != nil {
		return err
	}
	in := &ingest.Ingester{
		Client:          util.Client(c),
		Mapping:         mapping,
		IDField:         c.String("id-field"),
		MintMissing:     c.Bool("mint-missing"),
		Mode:            mode,
		ContinueOnError: c.Bool("continue"),
	}
	logger := logging.Ctx(c.Context)
	if mapping.Empty() {
		logger.Warn(ingest.LOG_TAG, "the field mapping is empty; nothing will be bound")
	}

	report, err := in.Ingest(c.Context, src)
	printReport(logger, report)
	if rerr := util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "report", assembleReport(report))
	}); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

func printReport(logger *logging.Logger, report ingest.Report) {
	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			logger.Out("%s: failed", f.Path)
		case f.Skipped != "":
			logger.Out("%s: skipped: %s", f.Path, f.Skipped)
		case f.Minted:
			logger.Out("%s: %s (minted): %d element(s)", f.Path, f.ID, len(f.Elements))
		default:
			logger.Out("%s: %s: %d element(s)", f.Path, f.ID, len(f.Elements))
		}
	}
	bound, skipped, failed := report.Count()
	logger.Info(ingest.LOG_TAG, "run %s: %d bound, %d skipped, %d failed", report.RunID, bound, skipped, failed)
}

func assembleReport(report ingest.Report) qp.Assemble {
	return qp.Map(3, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "runID", qp.String(report.RunID))
		qp.MapEntry(ma, "source", qp.String(report.Source))
		qp.MapEntry(ma, "files", qp.List(int64(len(report.Files)), func(la datamodel.ListAssembler) {
			for _, f := range report.Files {
				f := f
				qp.ListEntry(la, qp.Map(6, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "path", qp.String(f.Path))
					qp.MapEntry(ma, "id", qp.String(string(f.ID)))
					qp.MapEntry(ma, "minted", qp.Bool(f.Minted))
					qp.MapEntry(ma, "elements", util.Elements(f.Elements))
					qp.MapEntry(ma, "skipped", qp.String(f.Skipped))
					if f.Err != nil {
						qp.MapEntry(ma, "error", qp.String(f.Err.Error()))
					} else {
						qp.MapEntry(ma, "error", qp.Null())
					}
				}))
			}
		}))
	})
}
