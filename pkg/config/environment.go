package config

import "os"

const (
	// EnvNoidPath overrides NOID.noid_path
	EnvNoidPath = "NOIDWRAP_NOID_PATH"
	// EnvDBPath overrides NOID.db_path
	EnvDBPath = "NOIDWRAP_DB_PATH"
	// EnvLogLevel overrides Logging.level
	EnvLogLevel = "NOIDWRAP_LOG_LEVEL"
	// EnvConfigPath names the config file when --config is not given
	EnvConfigPath = "NOIDWRAP_CONFIG"
)

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvNoidPath,
	EnvDBPath,
	EnvLogLevel,
	EnvConfigPath,
}

// Environment snapshots the environment variables noidwrap cares about.
// Configuration code takes the snapshot as a value rather than calling os.Getenv,
// so it stays deterministic under test.
func Environment() map[string]string {
	env := make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

// ApplyEnv overlays environment overrides onto cfg.
// Empty values are ignored.
func (cfg *Config) ApplyEnv(env map[string]string) {
	if v := env[EnvNoidPath]; v != "" {
		cfg.Noid.NoidPath = v
	}
	if v := env[EnvDBPath]; v != "" {
		cfg.Noid.DBPath = v
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.Logging.Level = v
	}
}
