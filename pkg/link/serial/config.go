package serial

import (
	"flag"
	"os"
	"time"

	"github.com/NewLearnStream/dr16/pkg/link"
)

// Config defines the serial port settings of a DR16 receiver.
type Config struct {
	Port        string
	BaudRate    int
	IdleTimeout time.Duration
}

var defaultConfig = Config{
	BaudRate:    DefaultBaudRate,
	IdleTimeout: link.DefaultIdleTimeout,
}

func init() {
	if val := os.Getenv("DR16_SERIAL_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the receiver, empty for auto detection.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.IdleTimeout, "idle", defaultConfig.IdleTimeout, "Idle gap ending a frame.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
