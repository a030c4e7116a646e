package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config points the suites at an already running board server.
// Suites are skipped when the addresses are left empty.
type Config struct {
	BoardURL      string        `envconfig:"E2E_BOARD_URL"`
	BoardGrpcAddr string        `envconfig:"E2E_BOARD_GRPC_ADDR"`
	StepTimeout   time.Duration `envconfig:"E2E_STEP_TIMEOUT" default:"30s"`
	// E2E_DEBUG_JSON dumps gRPC request and response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS colorizes step headers
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
