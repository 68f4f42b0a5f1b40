package noidapp

import (
	appbase "github.com/warptools/noidwrap/app/base"
	_ "github.com/warptools/noidwrap/app/binding"
	_ "github.com/warptools/noidwrap/app/healthcheck"
	_ "github.com/warptools/noidwrap/app/ingest"
	_ "github.com/warptools/noidwrap/app/minter"
)

var App = appbase.App
