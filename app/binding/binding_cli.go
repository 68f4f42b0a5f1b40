// Package bindingcli holds the commands that bind metadata to identifiers and read it back.
package bindingcli

import (
	"strings"

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
		bindCmdDef,
		fetchCmdDef,
		getCmdDef,
	)
}

func modeNames() string {
	names := make([]string, len(noid.BindModes))
	for i, m := range noid.BindModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

var bindCmdDef = &cli.Command{
	Name:      "bind",
	Usage:     "Bind a value to an element of an identifier",
	ArgsUsage: "<id> <element> [value]",
	Description: heredoc.Doc(`
		Binds value to element under id.
		The default mode, set, overwrites any existing value, so repeating a bind changes nothing.
		The delete and purge modes take no value.
	`),
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "How to bind; one of " + modeNames(),
			Value:   string(noid.BindSet),
		},
	},
	Action: util.StandardMiddleware(cmdBind),
}

func cmdBind(c *cli.Context) error {
	const usage = "noidwrap bind [--mode MODE] <id> <element> [value]"
	mode, err := noid.ParseBindMode(c.String("mode"))
	if err != nil {
		return err
	}
	args := c.Args().Slice()
	want := 3
	if !mode.TakesValue() {
		want = 2
	}
	switch {
	case len(args) < want:
		return noidapi.ErrorMissingArguments(usage)
	case len(args) > want:
		return noidapi.ErrorInvalid("too many arguments for bind "+string(mode), [2]string{"usage", usage})
	}
	id, element := noid.ID(args[0]), args[1]
	value := ""
	if mode.TakesValue() {
		value = args[2]
	}

	result, err := util.Client(c).Bind(c.Context, mode, id, element, value)
	if err != nil {
		return err
	}
	logging.Ctx(c.Context).Out("%s %s: %s", id, element, result.Status)
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String(string(id)))
		qp.MapEntry(ma, "element", qp.String(element))
		qp.MapEntry(ma, "mode", qp.String(string(mode)))
		qp.MapEntry(ma, "status", qp.String(result.Status))
		qp.MapEntry(ma, "detail", qp.String(result.Detail))
	})
}

var fetchCmdDef = &cli.Command{
	Name:      "fetch",
	Usage:     "Show the elements bound to an identifier",
	ArgsUsage: "<id> [element...]",
	Description: heredoc.Doc(`
		Shows every element bound under id, or only the named ones.
	`),
	Action: util.StandardMiddleware(cmdFetch),
}

func cmdFetch(c *cli.Context) error {
	if !c.Args().Present() {
		return noidapi.ErrorMissingArguments("noidwrap fetch <id> [element...]")
	}
	id := noid.ID(c.Args().First())
	result, err := util.Client(c).Fetch(c.Context, id, c.Args().Tail()...)
	if err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	logger.Out("id: %s", result.ID)
	if result.Circ != "" {
		logger.Out("Circ: %s", result.Circ)
	}
	for _, e := range result.Elements {
		logger.Out("%s: %s", e.Name, e.Value)
	}
	for _, note := range result.Notes {
		logger.Info(noid.LOG_TAG, "%s", strings.TrimSpace(note))
	}
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "id", qp.String(string(result.ID)))
		qp.MapEntry(ma, "circ", qp.String(result.Circ))
		qp.MapEntry(ma, "elements", util.Elements(result.Elements))
		qp.MapEntry(ma, "notes", util.Strings(result.Notes))
	})
}

var getCmdDef = &cli.Command{
	Name:      "get",
	Usage:     "Print the bare values bound to an identifier",
	ArgsUsage: "<id> [element...]",
	Action:    util.StandardMiddleware(cmdGet),
}

func cmdGet(c *cli.Context) error {
	if !c.Args().Present() {
		return noidapi.ErrorMissingArguments("noidwrap get <id> [element...]")
	}
	values, err := util.Client(c).Get(c.Context, noid.ID(c.Args().First()), c.Args().Tail()...)
	if err != nil {
		return err
	}
	logger := logging.Ctx(c.Context)
	for _, v := range values {
		logger.Out("%s", v)
	}
	return util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "values", util.Strings(values))
	})
}
