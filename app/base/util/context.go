package util

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/config"
	"github.com/warptools/noidwrap/pkg/logging"
	"github.com/warptools/noidwrap/pkg/noid"
)

type configKey struct{}
type clientKey struct{}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromCtx returns the configuration in ctx, or the defaults if there is none.
func ConfigFromCtx(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey{}).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// WithClient returns a copy of ctx carrying client.
// Tests use this to hand commands a client that does not run the real noid.
func WithClient(ctx context.Context, client *noid.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

func ClientFromCtx(ctx context.Context) (*noid.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*noid.Client)
	return client, ok && client != nil
}

// Client returns the noid client for the command.
// CmdMiddlewareConfig guarantees there is one.
func Client(c *cli.Context) *noid.Client {
	client, ok := ClientFromCtx(c.Context)
	if !ok {
		panic("no noid client in context; is CmdMiddlewareConfig missing?")
	}
	return client
}

// LoadConfig resolves the configuration for a command invocation.
// The file named by --config (or NOIDWRAP_CONFIG) must exist;
// the default config.yaml is only read if it is there.
// Environment overrides are applied next, then the --noid and --db flags.
//
// Errors:
//
//   - noidwrap-error-config -- when the file cannot be read or parsed, or the result is invalid
func LoadConfig(c *cli.Context) (config.Config, error) {
	logger := logging.Ctx(c.Context)
	path := c.String("config")
	explicit := c.IsSet("config") && path != ""
	if path == "" {
		path = config.DefaultFilename
	}

	cfg := config.Default()
	_, statErr := os.Stat(path)
	switch {
	case explicit || statErr == nil:
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		logger.Debug("", "configuration loaded from %s", path)
	case errors.Is(statErr, fs.ErrNotExist):
		logger.Debug("", "no %s; using default configuration", path)
	default:
		return config.Config{}, noidapi.ErrorConfig(path, statErr)
	}

	cfg.ApplyEnv(config.Environment())
	if c.IsSet("noid") {
		cfg.Noid.NoidPath = c.String("noid")
	}
	if c.IsSet("db") {
		cfg.Noid.DBPath = c.String("db")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
