package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runtime holds process-level knobs that come from the environment rather
// than the YAML file.
type Runtime struct {
	ConfigPath string `env:"PYD_CONFIG" envDefault:"pickyourdifficulty.yml"`
	DataDir    string `env:"PYD_DATA_DIR" envDefault:"data"`
	ListenAddr string `env:"PYD_LISTEN_ADDR" envDefault:":8420"`
}

// RuntimeFromEnv loads Runtime from environment variables, falling back to
// defaults when unset.
func RuntimeFromEnv() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	return rt, nil
}
