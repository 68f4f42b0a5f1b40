package config

import (
	"testing"
	"testing/fstest"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/noidwrap/noidapi"
	"github.com/warptools/noidwrap/pkg/logging"
)

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"full.yaml": &fstest.MapFile{Data: []byte(`
NOID:
  noid_path: /usr/local/bin/noid
  db_path: /var/lib/noid
  template: r0.zek
  term: long
  naan: "13030"
  naa: example.org
  subnaa: ex
  timeout: 30s
Logging:
  level: DEBUG
`)},
		"partial.yaml": &fstest.MapFile{Data: []byte(`
NOID:
  noid_path: /opt/noid/bin/noid
Logging:
`)},
		"empty.yaml": &fstest.MapFile{Data: []byte(``)},
		"unknown-key.yaml": &fstest.MapFile{Data: []byte(`
NOID:
  noid_path: noid
  dbpath: typo
`)},
		"malformed.yaml":  &fstest.MapFile{Data: []byte("NOID: [unterminated\n")},
		"bad-level.yaml":  &fstest.MapFile{Data: []byte("Logging:\n  level: SHOUTY\n")},
		"bad-term.yaml":   &fstest.MapFile{Data: []byte("NOID:\n  term: eternal\n")},
		"bad-naan.yaml":   &fstest.MapFile{Data: []byte("NOID:\n  term: long\n  naan: \"13030\"\n")},
		"bad-timeout.yaml": &fstest.MapFile{Data: []byte("NOID:\n  timeout: -1s\n")},
	}

	t.Run("full", func(t *testing.T) {
		cfg, err := Load(fsys, "full.yaml")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, cfg, qt.DeepEquals, Config{
			Noid: NoidConfig{
				NoidPath: "/usr/local/bin/noid",
				DBPath:   "/var/lib/noid",
				Template: "r0.zek",
				Term:     "long",
				NAAN:     "13030",
				NAA:      "example.org",
				SubNAA:   "ex",
				Timeout:  30 * time.Second,
			},
			Logging: LoggingConfig{Level: "DEBUG"},
		})
		qt.Check(t, cfg.LogLevel(), qt.Equals, logging.LevelDebug)
	})
	t.Run("partial-gets-defaults", func(t *testing.T) {
		cfg, err := Load(fsys, "partial.yaml")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, cfg.Noid.NoidPath, qt.Equals, "/opt/noid/bin/noid")
		qt.Check(t, cfg.Noid.DBPath, qt.Equals, DefaultDBPath)
		qt.Check(t, cfg.Logging.Level, qt.Equals, DefaultLogLevel)
	})
	t.Run("empty-is-default", func(t *testing.T) {
		cfg, err := Load(fsys, "empty.yaml")
		qt.Assert(t, err, qt.IsNil)
		qt.Check(t, cfg, qt.DeepEquals, Default())
	})
	for _, name := range []string{
		"missing.yaml",
		"unknown-key.yaml",
		"malformed.yaml",
		"bad-level.yaml",
		"bad-term.yaml",
		"bad-naan.yaml",
		"bad-timeout.yaml",
	} {
		name := name
		t.Run("rejects/"+name, func(t *testing.T) {
			_, err := Load(fsys, name)
			qt.Assert(t, err, qt.IsNotNil)
			qt.Check(t, serum.Code(err), qt.Equals, noidapi.ECodeConfig)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(map[string]string{
		EnvNoidPath: "/usr/bin/noid",
		EnvDBPath:   "",
		EnvLogLevel: "ERROR",
	})
	qt.Check(t, cfg.Noid.NoidPath, qt.Equals, "/usr/bin/noid")
	qt.Check(t, cfg.Noid.DBPath, qt.Equals, DefaultDBPath)
	qt.Check(t, cfg.LogLevel(), qt.Equals, logging.LevelError)
}

func TestEnvironmentOnlyKnownKeys(t *testing.T) {
	t.Setenv(EnvDBPath, "/srv/noid")
	t.Setenv("NOIDWRAP_SOMETHING_ELSE", "x")
	env := Environment()
	qt.Check(t, env[EnvDBPath], qt.Equals, "/srv/noid")
	_, ok := env["NOIDWRAP_SOMETHING_ELSE"]
	qt.Check(t, ok, qt.IsFalse)
}
