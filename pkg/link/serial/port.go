// Package serial opens a UART as a link.Stream.
package serial

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/NewLearnStream/dr16/pkg/link"
)

// DefaultBaudRate is the DR16 line rate, 8 data bits, even parity, 1 stop bit.
const DefaultBaudRate = 100000

// Mode returns the serial mode of the config.
func (c *Config) Mode() *serial.Mode {
	baud := c.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
}

// PortName returns the configured port, or the first available one.
func (c *Config) PortName() (string, error) {
	if c.Port != "" {
		return c.Port, nil
	}
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial port found")
	}
	return ports[0], nil
}

// OpenPort opens the serial port in DR16 mode.
func (c *Config) OpenPort() (serial.Port, string, error) {
	name, err := c.PortName()
	if err != nil {
		return nil, "", err
	}
	port, err := serial.Open(name, c.Mode())
	if err != nil {
		return nil, name, fmt.Errorf("open %s: %w", name, err)
	}
	glog.V(2).Infof("opened %s at %d baud", name, c.Mode().BaudRate)
	return port, name, nil
}

// Open opens the serial port as a link and returns it with the port name.
// The port read timeout is the idle interval, so the returned stream
// detects idle lines from empty reads.
func (c *Config) Open() (*link.Stream, string, error) {
	port, name, err := c.OpenPort()
	if err != nil {
		return nil, name, err
	}
	stream := link.NewStream(port)
	if c.IdleTimeout > 0 {
		stream.IdleTimeout = c.IdleTimeout
	}
	if err := port.SetReadTimeout(stream.IdleTimeout); err != nil {
		port.Close()
		return nil, name, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	stream.ReadTimeout = true
	return stream, name, nil
}

// ListPorts lists serial ports, excluding bluetooth and modem ports.
func ListPorts() ([]string, error) {
	all, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	var ports []string
	for _, p := range all {
		if !isBluetoothPort(p) {
			ports = append(ports, p)
		}
	}
	return ports, nil
}

func isBluetoothPort(name string) bool {
	low := strings.ToLower(name)
	if strings.Contains(low, "bluetooth-incoming-port") || strings.Contains(low, "modem") {
		return true
	}
	return strings.Contains(low, "bluetooth") && !strings.Contains(low, "usb")
}
