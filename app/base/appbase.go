package appbase

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ipld/go-ipld-prime"
	ipldjson "github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/urfave/cli/v2"

	_ "github.com/warptools/noidwrap/app/base/helpgen"
	"github.com/warptools/noidwrap/pkg/config"
)

const VERSION = "v0.1.0"

var App = &cli.App{
	Name:    "noidwrap",
	Version: VERSION,
	Usage:   "mint and bind noid identifiers, and ingest metadata into them",

	Reader:    closedReader{}, // Replace with os.Stdin in real application; or other wiring, in tests.
	Writer:    panicWriter{},  // Replace with os.Stdout in real application; or other wiring, in tests.
	ErrWriter: panicWriter{},  // Replace with os.Stderr in real application; or other wiring, in tests.

	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      "config",
			Aliases:   []string{"c"},
			Usage:     "Read configuration from `FILE`; if not given, " + config.DefaultFilename + " is used when it exists",
			EnvVars:   []string{config.EnvConfigPath},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "noid",
			Usage:     "Path of the noid executable, overriding the configuration",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      "db",
			Usage:     "Directory holding the minter database, overriding the configuration",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			EnvVars: []string{"NOIDWRAP_DEBUG"},
		},
		&cli.BoolFlag{
			Name: "quiet",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Enable JSON API output",
		},
		&cli.StringFlag{
			Name:      "trace.file",
			Usage:     "Enable tracing and emit output to file",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "trace.http.enable",
			Usage: "Enable remote tracing over http",
		},
		&cli.BoolFlag{
			Name:  "trace.http.insecure",
			Usage: "Allows insecure http",
		},
		&cli.StringFlag{
			Name:  "trace.http.endpoint",
			Usage: "Sets an endpoint for remote open-telemetry tracing collection",
		},
	},

	// The commands slice is updated by each package that contains commands.
	// Import the parent of this package to get that all done for you!
	Commands: []*cli.Command{},

	ExitErrHandler: func(c *cli.Context, err error) {
		if err == nil {
			return
		}
		if c.Bool("json") {
			bytes, err := json.Marshal(err)
			if err != nil {
				panic("error marshaling json")
			}
			fmt.Fprintf(c.App.ErrWriter, "%s\n", string(bytes))
		} else {
			fmt.Fprintf(c.App.ErrWriter, "error: %s\n", err)
		}
	},

	After: afterFunc,
}

// Aaaand the other modifications to `urfave/cli` that are unfortunately only possible by manipulating globals:
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version", // And no short aliases.  "-v" is for "verbose"!
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

// afterFunc runs after any command completes.
// A command may set c.App.Metadata["result"] to a datamodel.Node;
// in JSON mode that value is printed to stdout.
// The result is cleared either way, since App is reused between runs in tests.
func afterFunc(c *cli.Context) error {
	result, exists := c.App.Metadata["result"]
	if !exists {
		return nil
	}
	delete(c.App.Metadata, "result")
	if !c.Bool("json") || result == nil {
		return nil
	}
	n, ok := result.(datamodel.Node)
	if !ok {
		panic("invalid result value - not a datamodel.Node")
	}
	serial, err := ipld.Encode(n, ipldjson.Encode)
	if err != nil {
		panic("failed to serialize output")
	}
	fmt.Fprintf(c.App.Writer, "%s\n", serial)
	return nil
}

type closedReader struct{}

// Read is a dummy method that always returns EOF.
func (c closedReader) Read(p []byte) (int, error) {
	return 0, io.EOF
}

type panicWriter struct{}

// Write is a dummy method that always panics.  You're supposed to replace panicWriter values before use.
func (p panicWriter) Write(data []byte) (int, error) {
	panic("replace the Writer and ErrWriter on the App value in packages that use it!")
}
