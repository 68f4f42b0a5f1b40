// Package mintercli holds the commands that manage the minter database and mint identifiers.
package mintercli

import (
	"strconv"

	"github.com/MakeNowJust/heredoc"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/noidwrap/app/base"
	"github.com/warptools/noidwrap/app/base/util"
	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/noid"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands,
		dbcreateCmdDef,
		mintCmdDef,
		validateCmdDef,
		holdCmdDef,
		dbinfoCmdDef,
	)
}

var dbcreateCmdDef = &cli.Command{
	Name:      "dbcreate",
	Usage:     "Create a minter database",
	ArgsUsage: "[template [term [naan naa subnaa]]]",
	Description: heredoc.Doc(`
		Creates the minter database in the configured database directory.

		Arguments that are not given are taken from the NOID section of the configuration.
		A template is required one way or the other.
	`),
	Action: util.StandardMiddleware(cmdDBCreate),
}

func cmdDBCreate(c *cli.Context) error {
	cfg := util.ConfigFromCtx(c.Context)
	opts := noid.DBCreateOptionsFromConfig(cfg.Noid)
	args := c.Args().Slice()
	switch len(args) {
	case 5:
		opts.NAAN, opts.NAA, opts.SubNAA = args[2], args[3], args[4]
		fallthrough
	case 2:
		opts.Term = args[1]
		fallthrough
	case 1:
		opts.Template = args[0]
	case 0:
	default:
		return noidapi.ErrorInvalid("dbcreate takes a template, a term, and then naan, naa and subnaa together",
			[2]string{"args", strconv.Itoa(len(args))})
	}

	report, err := util.Client(c).DBCreate(c.Context, opts)
	if err != nil {
		return err
	}
	printReport(logging.Ctx(c.Context), report)
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "report", util.Report(report))
	})
}

var mintCmdDef = &cli.Command{
	Name:      "mint",
	Usage:     "Mint new identifiers",
	ArgsUsage: "[count]",
	Description: heredoc.Doc(`
		Mints count identifiers (one, if no count is given), and prints one per line.
	`),
	Action: util.StandardMiddleware(cmdMint),
}

func cmdMint(c *cli.Context) error {
	count := 1
	if c.Args().Len() > 1 {
		return noidapi.ErrorInvalid("mint takes at most one argument")
	}
	if c.Args().Present() {
		n, err := strconv.Atoi(c.Args().First())
		if err != nil {
			return noidapi.ErrorInvalid("mint count must be a number", [2]string{"count", c.Args().First()})
		}
		count = n
	}
	ids, err := util.Client(c).Mint(c.Context, count)
	if err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	for _, id := range ids {
		logger.Out("%s", id)
	}
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "ids", util.IDs(ids))
	})
}

var validateCmdDef = &cli.Command{
	Name:      "validate",
	Usage:     "Check identifiers against a template",
	ArgsUsage: "<id>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "template",
			Usage: "Check against `TEMPLATE` instead of the minter's own",
			Value: noid.ValidateTemplateDefault,
		},
	},
	Action: util.StandardMiddleware(cmdValidate),
}

func cmdValidate(c *cli.Context) error {
	if !c.Args().Present() {
		return noidapi.ErrorMissingArguments("noidwrap validate [--template TEMPLATE] <id>...")
	}
	ids := make([]noid.ID, 0, c.Args().Len())
	for _, arg := range c.Args().Slice() {
		ids = append(ids, noid.ID(arg))
	}
	verdicts, err := util.Client(c).Validate(c.Context, c.String("template"), ids...)
	if err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	for _, v := range verdicts {
		if v.Valid {
			logger.Out("%s: valid", v.ID)
		} else {
			logger.Out("%s: invalid: %s", v.ID, v.Reason)
		}
	}
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "verdicts", qp.List(int64(len(verdicts)), func(la datamodel.ListAssembler) {
			for _, v := range verdicts {
				v := v
				qp.ListEntry(la, qp.Map(3, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "id", qp.String(string(v.ID)))
					qp.MapEntry(ma, "valid", qp.Bool(v.Valid))
					qp.MapEntry(ma, "reason", qp.String(v.Reason))
				}))
			}
		}))
	})
}

var holdCmdDef = &cli.Command{
	Name:      "hold",
	Usage:     "Place or release holds on identifiers",
	ArgsUsage: "set|release <id>...",
	Description: heredoc.Doc(`
		A held identifier is never handed out by mint.
	`),
	Action: util.StandardMiddleware(cmdHold),
}

func cmdHold(c *cli.Context) error {
	const usage = "noidwrap hold set|release <id>..."
	if c.Args().Len() < 2 {
		return noidapi.ErrorMissingArguments(usage)
	}
	var set bool
	switch how := c.Args().First(); how {
	case "set":
		set = true
	case "release":
	default:
		return noidapi.ErrorInvalid("hold takes set or release, not "+how, [2]string{"usage", usage})
	}
	ids := make([]noid.ID, 0, c.Args().Len()-1)
	for _, arg := range c.Args().Tail() {
		ids = append(ids, noid.ID(arg))
	}
	if err := util.Client(c).Hold(c.Context, set, ids...); err != nil {
		return err
	}
	logging.Ctx(c.Context).Out("%s: %d identifier(s)", c.Args().First(), len(ids))
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "hold", qp.Bool(set))
		qp.MapEntry(ma, "ids", util.IDs(ids))
	})
}

var dbinfoCmdDef = &cli.Command{
	Name:      "dbinfo",
	Usage:     "Describe the minter database",
	ArgsUsage: "[brief|full|dump]",
	Action:    util.StandardMiddleware(cmdDBInfo),
}

func cmdDBInfo(c *cli.Context) error {
	report, err := util.Client(c).DBInfo(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	printReport(logging.Ctx(c.Context), report)
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "report", util.Report(report))
	})
}

func printReport(logger *logging.Logger, report noid.Report) {
	for _, e := range report.Entries {
		logger.Out("%s: %s", e.Key, e.Value)
	}
	for _, line := range report.Text {
		logger.Out("%s", line)
	}
}
