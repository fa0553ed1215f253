package mqtt

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// Config defines the MQTT settings.
type Config struct {
	// BrokerURL specifies the broker and topic prefix.
	// e.g. mqtt://host:port/topic-prefix/
	BrokerURL string
	Name      string
	ID        string
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/dr16/",
	Name:      "dr16",
}

func init() {
	if val := os.Getenv("DR16_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
	if val := os.Getenv("DR16_NAME"); val != "" {
		defaultConfig.Name = val
	}
	if val := os.Getenv("DR16_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Receiver name in topics.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Receiver ID in topics, default to machine ID.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MachineID retrieves the ID identifying the machine, protected by the
// application name so the raw machine ID isn't exposed.
func MachineID() (string, error) {
	return machineid.ProtectedID("dr16")
}

// ReceiverInfo creates the ReceiverInfo, falling back to the machine ID
// and then the hostname when ID isn't set.
func (c *Config) ReceiverInfo(meta ReceiverMeta) (ReceiverInfo, error) {
	info := ReceiverInfo{Name: c.Name, ID: c.ID, Meta: meta}
	if info.ID != "" {
		return info, nil
	}
	id, err := MachineID()
	if err != nil {
		if id, err = os.Hostname(); err != nil {
			return info, err
		}
	}
	if len(id) > 12 {
		id = id[:12]
	}
	info.ID = id
	return info, nil
}

// NewRegistrar creates a Registrar using current config.
func (c *Config) NewRegistrar(meta ReceiverMeta) (*Registrar, error) {
	info, err := c.ReceiverInfo(meta)
	if err != nil {
		return nil, err
	}
	return NewRegistrar(c.BrokerURL, info)
}
