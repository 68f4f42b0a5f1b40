package main

import (
	"os"

	noidapp "github.com/warptools/noidwrap/app"
)

func main() {
	noidapp.App.Reader = os.Stdin
	noidapp.App.Writer = os.Stdout
	noidapp.App.ErrWriter = os.Stderr
	if err := noidapp.App.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
