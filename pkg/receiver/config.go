// Package receiver assembles a dr16.Device with its link.
package receiver

import (
	"flag"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
	"github.com/NewLearnStream/dr16/pkg/link"
	"github.com/NewLearnStream/dr16/pkg/link/serial"
	"github.com/NewLearnStream/dr16/pkg/sim"
)

// Config defines where frames come from.
type Config struct {
	Serial   *serial.Config
	Simulate bool
}

var defaultConfig = Config{
	Serial: serial.Default(),
}

// SetupFlags sets command line flags.
func SetupFlags() {
	serial.SetupFlags()
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Use simulated frames instead of a serial port.")
	flag.StringVar(&configFile, "config", configFile, "TOML config file.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	serialConf := *defaultConfig.Serial
	conf.Serial = &serialConf
	return &conf
}

// Receiver is an opened Device with everything to run it.
type Receiver struct {
	Device   *dr16.Device
	Port     string
	BaudRate int

	runnables []fx.Runnable
}

// Open opens the serial port or the simulator.
func (c *Config) Open() (*Receiver, error) {
	if c.Simulate {
		pipe := link.NewPipe()
		r := &Receiver{Device: dr16.New(pipe), Port: "sim"}
		r.runnables = append(r.runnables, sim.NewFeeder(pipe, sim.NewGenerator()))
		r.runnables = append(r.runnables, r.Device)
		return r, nil
	}
	stream, name, err := c.Serial.Open()
	if err != nil {
		return nil, err
	}
	r := &Receiver{
		Device:   dr16.New(stream),
		Port:     name,
		BaudRate: c.Serial.Mode().BaudRate,
	}
	r.runnables = append(r.runnables, r.Device)
	return r, nil
}

// Runnables returns what must run for the Device to receive frames.
func (r *Receiver) Runnables() []fx.Runnable {
	return r.runnables
}
