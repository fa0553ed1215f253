package receiver

import (
	"flag"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// File is the TOML form of Config.
//
//	simulate = false
//	[serial]
//	port = "/dev/ttyUSB0"
//	baud_rate = 100000
//	idle_timeout = "4ms"
type File struct {
	Simulate bool       `toml:"simulate"`
	Serial   SerialFile `toml:"serial"`
}

// SerialFile is the serial section of File.
type SerialFile struct {
	Port        string `toml:"port,omitempty"`
	BaudRate    int    `toml:"baud_rate,omitempty"`
	IdleTimeout string `toml:"idle_timeout,omitempty"`
}

var configFile string

// ParseFile parses a TOML config.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if f.Serial.IdleTimeout != "" {
		if _, err := time.ParseDuration(f.Serial.IdleTimeout); err != nil {
			return nil, fmt.Errorf("parse config: idle_timeout: %w", err)
		}
	}
	return &f, nil
}

// LoadFile reads a TOML config from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseFile(data)
}

// Apply overrides c with the values set in f.
func (f *File) Apply(c *Config) {
	if f.Simulate {
		c.Simulate = true
	}
	if f.Serial.Port != "" {
		c.Serial.Port = f.Serial.Port
	}
	if f.Serial.BaudRate > 0 {
		c.Serial.BaudRate = f.Serial.BaudRate
	}
	if d, err := time.ParseDuration(f.Serial.IdleTimeout); err == nil && d > 0 {
		c.Serial.IdleTimeout = d
	}
}

// LoadConfigFile applies the file given by -config to the defaults.
// Command line flags are parsed again afterwards so they still win.
func LoadConfigFile() error {
	if configFile == "" {
		return nil
	}
	f, err := LoadFile(configFile)
	if err != nil {
		return err
	}
	f.Apply(&defaultConfig)
	return flag.CommandLine.Parse(os.Args[1:])
}
