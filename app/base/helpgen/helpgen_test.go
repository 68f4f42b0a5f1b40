package helpgen

import (
	"io"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	"github.com/warptools/noidwrap/noidapi"
)

func TestFlagStringer(t *testing.T) {
	for _, tc := range []struct {
		name   string
		flag   cli.Flag
		expect string
	}{
		{"bool", &cli.BoolFlag{Name: "quiet", Usage: "say less"},
			"#### --quiet\n\nsay less\n"},
		{"placeholder", &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "read `FILE`", EnvVars: []string{"NOIDWRAP_CONFIG"}},
			"#### --config=<FILE>, -c=<FILE>\n\nread FILE\n(env var: $**NOIDWRAP_CONFIG**)\n"},
		{"slice", &cli.StringSliceFlag{Name: "map", Usage: "a `FIELD=ELEMENT` pair"},
			"#### --map=<FIELD=ELEMENT> [ --map=<FIELD=ELEMENT> ]\n\na FIELD=ELEMENT pair\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			qt.Check(t, flagStringer(tc.flag), qt.Equals, tc.expect)
		})
	}
}

func TestUnquoteUsage(t *testing.T) {
	name, usage := unquoteUsage("no placeholder")
	qt.Check(t, name, qt.Equals, "")
	qt.Check(t, usage, qt.Equals, "no placeholder")

	name, usage = unquoteUsage("an `unterminated placeholder")
	qt.Check(t, name, qt.Equals, "")
	qt.Check(t, usage, qt.Equals, "an `unterminated placeholder")
}

func TestBrokenTemplatePanics(t *testing.T) {
	defer func() {
		err, ok := recover().(error)
		qt.Assert(t, ok, qt.IsTrue)
		qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeInternal)
	}()
	printHelpCustom(io.Discard, "{{.NoSuchField}}", struct{}{}, nil)
}
