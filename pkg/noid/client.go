package noid

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/config"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/tracing"
)

// Client performs noid operations through a Runner and parses the results.
// It holds no state besides the runner.
type Client struct {
	runner Runner
}

func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// NewClientFromConfig returns a client that runs the noid executable named in cfg.
func NewClientFromConfig(cfg config.Config) *Client {
	return NewClient(NewExecRunner(cfg.Noid))
}

// DBCreateOptions are the arguments to "noid dbcreate".
// Term is required when NAAN is given, and NAAN, NAA and SubNAA go together.
type DBCreateOptions struct {
	Template string
	Term     string
	NAAN     string
	NAA      string
	SubNAA   string
}

// DBCreateOptionsFromConfig picks the dbcreate arguments out of the NOID config section.
func DBCreateOptionsFromConfig(cfg config.NoidConfig) DBCreateOptions {
	return DBCreateOptions{
		Template: cfg.Template,
		Term:     cfg.Term,
		NAAN:     cfg.NAAN,
		NAA:      cfg.NAA,
		SubNAA:   cfg.SubNAA,
	}
}

func (o DBCreateOptions) args() ([]string, error) {
	if o.Template == "" {
		return nil, noidapi.ErrorInvalid("dbcreate requires a template")
	}
	args := []string{"dbcreate", o.Template}
	if o.Term == "" {
		if o.NAAN != "" {
			return nil, noidapi.ErrorInvalid("dbcreate: naan requires a term", [2]string{"naan", o.NAAN})
		}
		return args, nil
	}
	args = append(args, o.Term)
	if o.NAAN == "" && o.NAA == "" && o.SubNAA == "" {
		return args, nil
	}
	if o.NAAN == "" || o.NAA == "" || o.SubNAA == "" {
		return nil, noidapi.ErrorInvalid("dbcreate: naan, naa and subnaa must be given together")
	}
	return append(args, o.NAAN, o.NAA, o.SubNAA), nil
}

// DBCreate creates a minter database in the configured directory.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when the options are incomplete
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
func (c *Client) DBCreate(ctx context.Context, opts DBCreateOptions) (Report, error) {
	args, err := opts.args()
	if err != nil {
		return Report{}, err
	}
	logging.Ctx(ctx).Info(LOG_TAG, "creating minter database with template %s...", opts.Template)
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return Report{}, err
	}
	return ParseReport(out.Stdout), nil
}

// Mint mints count identifiers. Exactly count distinct identifiers are returned, or an error.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when count is less than one
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
//   - noidwrap-error-noid-output -- when the output is not count distinct identifiers
func (c *Client) Mint(ctx context.Context, count int) (_ []ID, err error) {
	if count < 1 {
		return nil, noidapi.ErrorInvalid("mint count must be at least 1", [2]string{"count", strconv.Itoa(count)})
	}
	ctx, span := tracing.StartFn(ctx, "Mint", trace.WithAttributes(
		attribute.Int(tracing.AttrKeyNoidwrapMintCount, count),
	))
	defer func() { tracing.EndWithStatus(span, err) }()

	logging.Ctx(ctx).Info(LOG_TAG, "minting %d identifier(s)...", count)
	out, err := c.runner.Run(ctx, "mint", strconv.Itoa(count))
	if err != nil {
		return nil, err
	}
	ids, err := ParseMint(out.Stdout)
	if err != nil {
		return nil, err
	}
	if len(ids) != count {
		return nil, noidapi.ErrorNoidOutput("mint", out.Stdout,
			"asked for "+strconv.Itoa(count)+" identifiers, got "+strconv.Itoa(len(ids)))
	}
	return ids, nil
}

// Bind binds value to element under id.
// For BindDelete and BindPurge the value is not passed to noid.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when the mode is unknown, id is empty, or element is not a usable name
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
//   - noidwrap-error-noid-output -- when noid does not accept the bind
func (c *Client) Bind(ctx context.Context, mode BindMode, id ID, element, value string) (BindResult, error) {
	if !mode.Valid() {
		return BindResult{}, noidapi.ErrorInvalid("unknown bind mode "+string(mode), [2]string{"mode", string(mode)})
	}
	if id == "" {
		return BindResult{}, noidapi.ErrorInvalid("bind requires an identifier")
	}
	if element == "" {
		return BindResult{}, noidapi.ErrorInvalid("bind requires an element name", [2]string{"id", string(id)})
	}
	if problem := ElementNameProblem(element); problem != "" {
		return BindResult{}, noidapi.ErrorInvalid(problem, [2]string{"id", string(id)}, [2]string{"element", element})
	}
	logging.Ctx(ctx).Info(LOG_TAG, "binding %s to %s...", element, id)
	args := []string{"bind", string(mode), string(id), element}
	if mode.TakesValue() {
		args = append(args, value)
	}
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return BindResult{}, err
	}
	return ParseBind(out.Stdout)
}

// BindAll binds each element in order, stopping at the first failure.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- see Bind
//   - noidwrap-error-noid-failed -- see Bind
//   - noidwrap-error-noid-unavailable -- see Bind
//   - noidwrap-error-noid-output -- see Bind
func (c *Client) BindAll(ctx context.Context, mode BindMode, id ID, elements []Element) (err error) {
	ctx, span := tracing.StartFn(ctx, "BindAll", trace.WithAttributes(
		attribute.String(tracing.AttrKeyNoidwrapIdentifier, string(id)),
	))
	defer func() { tracing.EndWithStatus(span, err) }()
	for _, e := range elements {
		if _, err := c.Bind(ctx, mode, id, e.Name, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Fetch returns the elements bound under id; all of them unless names are given.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when id is empty
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
//   - noidwrap-error-noid-output -- when the output cannot be parsed
func (c *Client) Fetch(ctx context.Context, id ID, names ...string) (FetchResult, error) {
	if id == "" {
		return FetchResult{}, noidapi.ErrorInvalid("fetch requires an identifier")
	}
	logging.Ctx(ctx).Debug(LOG_TAG, "fetching %s...", id)
	out, err := c.runner.Run(ctx, append([]string{"fetch", string(id)}, names...)...)
	if err != nil {
		return FetchResult{}, err
	}
	return ParseFetch(out.Stdout)
}

// Get returns the bare values bound under id, one per element.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when id is empty
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
func (c *Client) Get(ctx context.Context, id ID, names ...string) ([]string, error) {
	if id == "" {
		return nil, noidapi.ErrorInvalid("get requires an identifier")
	}
	out, err := c.runner.Run(ctx, append([]string{"get", string(id)}, names...)...)
	if err != nil {
		return nil, err
	}
	return ParseGet(out.Stdout), nil
}

// ValidateTemplateDefault asks noid to validate against the database's own template.
const ValidateTemplateDefault = "-"

// Validate checks ids against template. Use ValidateTemplateDefault for the minter's template.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when no ids are given
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
//   - noidwrap-error-noid-output -- when the verdicts don't line up with the ids
func (c *Client) Validate(ctx context.Context, template string, ids ...ID) ([]Validation, error) {
	if len(ids) == 0 {
		return nil, noidapi.ErrorInvalid("validate requires at least one identifier")
	}
	if template == "" {
		template = ValidateTemplateDefault
	}
	args := make([]string, 0, len(ids)+2)
	args = append(args, "validate", template)
	for _, id := range ids {
		args = append(args, string(id))
	}
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return ParseValidate(out.Stdout, ids)
}

// Hold places (set is true) or releases holds on ids.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when no ids are given
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
func (c *Client) Hold(ctx context.Context, set bool, ids ...ID) error {
	if len(ids) == 0 {
		return noidapi.ErrorInvalid("hold requires at least one identifier")
	}
	how := "release"
	if set {
		how = "set"
	}
	args := []string{"hold", how}
	for _, id := range ids {
		args = append(args, string(id))
	}
	_, err := c.runner.Run(ctx, args...)
	return err
}

// DBInfo levels understood by noid.
const (
	DBInfoBrief = "brief"
	DBInfoFull  = "full"
	DBInfoDump  = "dump"
)

// DBInfo reports on the minter database. An empty level means DBInfoBrief.
//
// Errors:
//
//   - noidwrap-error-invalid-argument -- when the level is unknown
//   - noidwrap-error-noid-failed -- when noid reports failure
//   - noidwrap-error-noid-unavailable -- when noid cannot be run
func (c *Client) DBInfo(ctx context.Context, level string) (Report, error) {
	switch level {
	case "":
		level = DBInfoBrief
	case DBInfoBrief, DBInfoFull, DBInfoDump:
	default:
		return Report{}, noidapi.ErrorInvalid("unknown dbinfo level "+level, [2]string{"level", level})
	}
	out, err := c.runner.Run(ctx, "dbinfo", level)
	if err != nil {
		return Report{}, err
	}
	return ParseReport(out.Stdout), nil
}
