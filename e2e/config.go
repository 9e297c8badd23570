package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_SERVER_ADDR points at a running node, e.g. http://localhost:8080.
	// When unset the e2e suite is skipped.
	ServerAddr string `envconfig:"CHAT_SERVER_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
