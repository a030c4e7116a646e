package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const (
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true" validate:"gt=0"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true" validate:"gt=0"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true" validate:"gt=0"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT,default=5s" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true" validate:"gt=0"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=0s" validate:"gte=0"`

	StoreDriver    string `env:"STORE_DRIVER,default=badger" validate:"oneof=badger sqlite"`
	BadgerFilepath string `env:"BADGER_FILEPATH" validate:"required_if=StoreDriver badger"`
	SQLiteFilepath string `env:"SQLITE_FILEPATH" validate:"required_if=StoreDriver sqlite"`
	BoardID        string `env:"BOARD_ID,default=default" validate:"required,max=128"`
	MaxSegments    int    `env:"MAX_SEGMENTS,default=10000" validate:"gte=0"`

	LogLevel    string `env:"LOG_LEVEL,required=true"`
	Host        string `env:"HOST,required=true"`
	Port        int    `env:"PORT,required=true" validate:"gt=0,lte=65535"`
	GrpcPort    int    `env:"GRPC_PORT,default=0" validate:"gte=0,lte=65535"`
	DebugPort   int    `env:"DEBUG_PORT,default=0" validate:"gte=0,lte=65535"`
	MDNSEnabled bool   `env:"MDNS_ENABLED,default=false"`
}

// LoadConfig reads the server configuration from the environment.
// A zero GrpcPort, DebugPort or MetricInterval disables the matching feature.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
