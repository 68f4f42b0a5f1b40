package helpgen

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"
)

/*
	A word of warning, as with most of this package:
	the default help templates in `urfave/cli` are package-scope variables,
	and we replace them during package init.
	(Setting overrides on each command would work too, but forgetting one
	gets you a hard-to-debug panic from the template engine.)
*/

// helper for heredoc dedenting plus don't do a trailing linebreak.
func docnl(s string) string {
	s = heredoc.Doc(s)
	return s[:len(s)-1]
}

var usageTemplate = docnl(`
	{{if .UsageText}}{{trim .UsageText}}{{else}}{{.HelpName}}{{if .VisibleFlags}} [options]{{end}}{{if .ArgsUsage}} {{.ArgsUsage}}{{end}}{{end}}
`)

var visibleCommandTemplate = docnl(`
	{{- range .VisibleCommands}}
	### {{join .Names ", "}}

	{{.Usage}}
	{{end}}
`)

var visibleFlagTemplate = docnl(`
	{{- range $i, $e := .VisibleFlags}}
	{{$e.String}}
	{{end}}
`) // `.String` goes through `cli.FlagStringer`; see flagStringer below.

func init() {
	cli.AppHelpTemplate = appHelpTemplate
	cli.CommandHelpTemplate = commandHelpTemplate
	cli.SubcommandHelpTemplate = subcommandHelpTemplate
}

// appHelpTemplate is used for just the root command.
var appHelpTemplate = heredoc.Doc(`
	## NAME

	{{.Name}}{{if .Usage}} - {{.Usage}}{{end}}

	## USAGE

	{{if .UsageText}}{{trim .UsageText}}{{else}}{{.HelpName}} [global options] command [command options] [arguments...]{{end}}

	{{- if .Version}}{{if not .HideVersion}}

	## VERSION

	{{.Version}}
	{{- end}}{{end}}

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleCommands}}

	## COMMANDS
	{{template "visibleCommandTemplate" .}}
	{{- end}}

	{{- if .VisibleFlags}}

	## GLOBAL OPTIONS
	{{template "visibleFlagTemplate" .}}
	{{- end}}
`)

// commandHelpTemplate is used for a command that has no subcommands.
var commandHelpTemplate = heredoc.Doc(`
	## NAME

	{{.HelpName}}{{if .Usage}} - {{.Usage}}{{end}}

	## USAGE

	{{template "usageTemplate" .}}

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleFlags}}

	## OPTIONS
	{{template "visibleFlagTemplate" .}}
	{{- end}}
`)

// subcommandHelpTemplate is used for a command with more than zero subcommands.
var subcommandHelpTemplate = heredoc.Doc(`
	## NAME

	{{.HelpName}}{{if .Usage}} - {{.Usage}}{{end}}

	## USAGE

	{{if .UsageText}}{{trim .UsageText}}{{else}}{{.HelpName}} command [command options] [arguments...]{{end}}

	{{- if .Description}}

	## DESCRIPTION

	{{trim .Description}}
	{{- end}}

	{{- if .VisibleCommands}}

	## COMMANDS
	{{template "visibleCommandTemplate" .}}
	{{- end}}

	{{- if .VisibleFlags}}

	## OPTIONS
	{{template "visibleFlagTemplate" .}}
	{{- end}}
`)

//
// And now functions for helping with flags.
//

func init() {
	cli.FlagStringer = flagStringer
}

func flagStringer(f cli.Flag) string {
	df, ok := f.(cli.DocGenerationFlag)
	if !ok {
		return fmt.Sprintf("#### %s\n", strings.Join(f.Names(), ", "))
	}

	placeholder, usage := unquoteUsage(df.GetUsage())
	if df.TakesValue() && placeholder == "" {
		placeholder = "VALUE"
	}

	// Bool flags only show a default when one was written out for them.
	defaultValueString := ""
	if bf, ok := f.(*cli.BoolFlag); !ok || !bf.DisableDefaultText {
		if s := df.GetDefaultText(); s != "" && s != "false" && s != `""` && s != "[]" {
			defaultValueString = fmt.Sprintf("\n(default: **%s**)", s)
		}
	}

	usageWithDefault := strings.TrimSpace(usage + defaultValueString)

	pn := prefixedNames(df.Names(), placeholder)
	if sliceFlag, ok := f.(cli.DocGenerationSliceFlag); ok && sliceFlag.IsSliceFlag() {
		pn = pn + " [ " + pn + " ]"
	}

	return fmt.Sprintf("#### %s\n\n%s%s\n", pn, usageWithDefault, envFormat(df.GetEnvVars()))
}

// Returns the placeholder, if any, and the unquoted usage string.
func unquoteUsage(usage string) (string, string) {
	start := strings.IndexByte(usage, '`')
	if start < 0 {
		return "", usage
	}
	end := strings.IndexByte(usage[start+1:], '`')
	if end < 0 {
		return "", usage
	}
	name := usage[start+1 : start+1+end]
	return name, usage[:start] + name + usage[start+1+end+1:]
}

func prefixedNames(names []string, placeholder string) string {
	var parts []string
	for _, name := range names {
		if name == "" {
			continue
		}
		prefix := "--"
		if len(name) == 1 {
			prefix = "-"
		}
		part := prefix + name
		if placeholder != "" {
			part += "=<" + placeholder + ">"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func envFormat(envVars []string) string {
	if len(envVars) == 0 {
		return ""
	}
	return fmt.Sprintf("\n(env var: $**%s**)", strings.Join(envVars, "**, $**"))
}
