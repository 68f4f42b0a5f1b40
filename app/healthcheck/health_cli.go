package healthcheckcli

import (
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/noidwrap/app/base"
	"github.com/warptools/noidwrap/app/base/util"
	"github.com/warptools/noidwrap/pkg/healthcheck"
	"github.com/warptools/noidwrap/pkg/logging"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, healthcheckCmdDef)
}

var healthcheckCmdDef = &cli.Command{
	Name:   "healthcheck",
	Usage:  "Check that noid can be run and the minter database is in place",
	Action: util.StandardMiddleware(cmdHealth),
}

func cmdHealth(c *cli.Context) error {
	ctx := c.Context
	log := logging.Ctx(ctx)
	cfg := util.ConfigFromCtx(ctx)
	hc := &healthcheck.HealthCheck{
		Runners: []healthcheck.Runner{
			&healthcheck.BinCheck{Path: cfg.Noid.NoidPath},
			&healthcheck.DatabaseCheck{Dir: cfg.Noid.DBPath},
			&healthcheck.DBInfoCheck{Client: util.Client(c)},
		},
	}
	if err := hc.Run(ctx); err != nil {
		log.Info("", "health check critical error: %s", err)
		return err
	}

	log.Debug("", "runners=%d, results=%d", len(hc.Runners), len(hc.Results))

	if !c.Bool("json") {
		if err := hc.Fprint(c.App.Writer); err != nil {
			return err
		}
	}
	if err := util.BuildResult(c, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "healthy", qp.Bool(hc.Healthy()))
		qp.MapEntry(ma, "checks", qp.List(int64(len(hc.Runners)), func(la datamodel.ListAssembler) {
			for i, r := range hc.Runners {
				name, err := r.String(), hc.Results[i]
				qp.ListEntry(la, qp.Map(3, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "name", qp.String(name))
					qp.MapEntry(ma, "status", qp.String(serum.Code(err)))
					qp.MapEntry(ma, "message", qp.String(serum.Message(err)))
				}))
			}
		}))
	}); err != nil {
		return err
	}
	if !hc.Healthy() {
		return serum.Error(healthcheck.CodeRunFailure, serum.WithMessageLiteral("one or more health checks failed"))
	}
	return nil
}
