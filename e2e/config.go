package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BROKERS points at a running broker, the suite is skipped when empty
	Brokers       []string `envconfig:"E2E_BROKERS"`
	AggregatorURL string   `envconfig:"E2E_AGGREGATOR_URL" default:"ws://localhost:8080"`
	ChatTopic     string   `envconfig:"E2E_CHAT_TOPIC" default:"chat"`
	IdentityTopic string   `envconfig:"E2E_IDENTITY_TOPIC" default:"identity"`
	// E2E_JWT_SECRET must match the aggregator JWT_SECRET when authentication is on
	JWTSecret string `envconfig:"E2E_JWT_SECRET"`
	// E2E_DEBUG_JSON dumps every published envelope and received frame
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
