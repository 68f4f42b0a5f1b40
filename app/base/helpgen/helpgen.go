/*
This package contains our custom help text generators,
and wires them into `urfave/cli` at package init time.

The templates emit markdown.  On a terminal, that markdown is rendered
with ANSI styling by the render package; anywhere else it is printed as
(normalized) markdown, which is also what the doc tests see.

(The use of package init time is unfortunate,
but package sideeffects cannot be avoided:
package-scope vars are the only option for customizing help processing
that the `urfave/cli` package currently makes available.)
*/
package helpgen

import (
	"bytes"
	"io"
	"strings"
	"text/template"

	"github.com/urfave/cli/v2"

	"github.com/warptools/noidwrap/app/base/render"
	"github.com/warptools/noidwrap/noidapi"
)

/*
	How the docs strings of a cli.Command are used here:

	- Usage -- a one-liner, used to describe this command in the parent command's overview of its children.
	- UsageText -- a synopsis.  May be multi-line.
	- Description -- freetext prose; may be multi-line.  Shows up in the `-h` for that command.
	- ArgsUsage -- the positional arguments, used to build a synopsis when UsageText is empty.
*/

// Mode, when non-nil, overrides the render mode picked for the output writer.
var Mode *render.Mode

// printHelpCustom is the entrypoint for `urfave/cli`'s customization.
func printHelpCustom(out io.Writer, tmpl string, data interface{}, customFuncs map[string]interface{}) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"trim": strings.TrimSpace,
	}
	for key, value := range customFuncs {
		funcMap[key] = value
	}

	t := template.Must(template.New("help").Funcs(funcMap).Parse(tmpl))
	template.Must(t.New("usageTemplate").Parse(usageTemplate))
	template.Must(t.New("visibleCommandTemplate").Parse(visibleCommandTemplate))
	template.Must(t.New("visibleFlagTemplate").Parse(visibleFlagTemplate))

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(noidapi.ErrorInternal("help template failed", err))
	}

	mode := render.Detect(out)
	if Mode != nil {
		mode = *Mode
	}
	if err := render.Render(buf.Bytes(), out, mode); err != nil {
		// The markdown is still readable.
		out.Write(buf.Bytes())
	}
}

func init() {
	cli.HelpPrinterCustom = printHelpCustom
}
