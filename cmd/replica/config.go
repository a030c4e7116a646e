package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL string `envconfig:"BOARD_URL" default:"ws://localhost:8080/ws"`
	// BOARD_DISCOVER looks the board up on the local network instead of BOARD_URL
	Discover     bool   `envconfig:"BOARD_DISCOVER" default:"false"`
	Color        string `envconfig:"BOARD_COLOR" default:"#000000"`
	UndoCapacity int    `envconfig:"UNDO_CAPACITY" default:"100"`
	// BOARD_COLOURS enables colorized output
	Colours  bool   `envconfig:"BOARD_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
