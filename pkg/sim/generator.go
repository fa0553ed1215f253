// Package sim generates synthetic DR16 frames for bench testing.
package sim

import (
	"math"
	"time"

	"github.com/NewLearnStream/dr16/pkg/dr16"
)

// Defaults of a Generator.
const (
	DefaultPeriod    = 14 * time.Millisecond
	DefaultCycle     = 100
	DefaultAmplitude = 660
)

// Generator produces a deterministic sequence of messages. Sticks follow
// a sine wave and the mouse a circle, while the switches step through
// their positions and a single key walks through the bitmask.
type Generator struct {
	Period    time.Duration
	Cycle     int
	Amplitude float64
}

// NewGenerator creates a Generator with defaults.
func NewGenerator() *Generator {
	return &Generator{
		Period:    DefaultPeriod,
		Cycle:     DefaultCycle,
		Amplitude: DefaultAmplitude,
	}
}

func (g *Generator) period() time.Duration {
	if g.Period > 0 {
		return g.Period
	}
	return DefaultPeriod
}

func (g *Generator) cycle() int {
	if g.Cycle > 0 {
		return g.Cycle
	}
	return DefaultCycle
}

// At returns the n-th message.
func (g *Generator) At(n int) dr16.Message {
	cycle := g.cycle()
	phase := AngleFromRadians(2 * math.Pi * float64(n%cycle) / float64(cycle))
	quarter := AngleFromDegrees(90)
	var msg dr16.Message
	a := phase
	for _, ch := range []*int16{&msg.RC.Ch0, &msg.RC.Ch1, &msg.RC.Ch2, &msg.RC.Ch3} {
		*ch = int16(math.Round(g.Amplitude * a.Sin()))
		a = a.Add(quarter)
	}
	step := n / cycle
	msg.RC.SwitchLeft = uint8(1 + step%3)
	msg.RC.SwitchRight = uint8(1 + (step+1)%3)
	msg.Mouse.X = int16(math.Round(100 * phase.Cos()))
	msg.Mouse.Y = int16(math.Round(100 * phase.Sin()))
	if (n/(cycle/2))%2 == 1 {
		msg.Mouse.Left = 1
	}
	msg.Keyboard.Keys = dr16.Keys(dr16.AllKeys[(n/10)%len(dr16.AllKeys)])
	return msg
}

// Frame returns the wire bytes of the n-th message.
func (g *Generator) Frame(n int) []byte {
	var b [dr16.MessageSize]byte
	msg := g.At(n)
	msg.Encode(&b)
	return b[:]
}
