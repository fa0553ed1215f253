// Package sh provides an interactive monitor of a DR16 receiver.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	"github.com/NewLearnStream/dr16/pkg/link/serial"
)

// Source provides the decoded state, implemented by dr16.Device.
type Source interface {
	RC() dr16.RcMessage
	Mouse() dr16.MouseMessage
	Keyboard() dr16.KeyboardMessage
	Generation() uint64
	Lock() *dr16.LockedMessage
	Stats() dr16.Stats
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	WaitTimeout time.Duration

	Shell  *ishell.Shell
	Source Source
}

const (
	shellKey = "$shell"
	prompt   = "dr16 > "

	// DefaultWaitTimeout bounds the wait for a single decode.
	DefaultWaitTimeout = time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&RCCmd,
		&MouseCmd,
		&KeysCmd,
		&StateCmd,
		&StatsCmd,
		&WaitCmd,
		&PortsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(src Source) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		WaitTimeout: DefaultWaitTimeout,

		Shell:  ishell.New(),
		Source: src,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

type keysView struct {
	Keys    uint16   `json:"keys"`
	Pressed []string `json:"pressed"`
}

func newKeysView(k dr16.KeyboardMessage) keysView {
	v := keysView{Keys: uint16(k.Keys), Pressed: []string{}}
	for _, key := range k.Keys.List() {
		v.Pressed = append(v.Pressed, key.String())
	}
	return v
}

type stateView struct {
	Generation uint64            `json:"generation"`
	RC         dr16.RcMessage    `json:"rc"`
	Mouse      dr16.MouseMessage `json:"mouse"`
	Keyboard   keysView          `json:"keyboard"`
}

// FormatRC formats the joystick channels for display.
func FormatRC(m dr16.RcMessage) string {
	return fmt.Sprintf("ch0=%d ch1=%d ch2=%d ch3=%d s_left=%d s_right=%d",
		m.Ch0, m.Ch1, m.Ch2, m.Ch3, m.SwitchLeft, m.SwitchRight)
}

// FormatMouse formats the mouse channel for display.
func FormatMouse(m dr16.MouseMessage) string {
	return fmt.Sprintf("x=%d y=%d z=%d left=%d right=%d", m.X, m.Y, m.Z, m.Left, m.Right)
}

// FormatKeys formats the keyboard bitmask for display.
func FormatKeys(m dr16.KeyboardMessage) string {
	return fmt.Sprintf("keys=0x%04x [%s]", uint16(m.Keys), m.Keys)
}

// FormatStats formats the receiver counters for display.
func FormatStats(s dr16.Stats) string {
	return fmt.Sprintf("frames=%d short=%d empty=%d overruns=%d decodes=%d pending=%d",
		s.Frames, s.ShortFrames, s.EmptyIdles, s.Overruns, s.Decodes, s.Pending)
}

// Show renders one of rc, mouse, keys, state or stats.
func (s *Shell) Show(what string) (string, error) {
	var view interface{}
	var text string
	switch what {
	case "rc":
		rc := s.Source.RC()
		view, text = rc, FormatRC(rc)
	case "mouse":
		mouse := s.Source.Mouse()
		view, text = mouse, FormatMouse(mouse)
	case "keys":
		keys := s.Source.Keyboard()
		view, text = newKeysView(keys), FormatKeys(keys)
	case "state":
		locked := s.Source.Lock()
		state := stateView{
			Generation: locked.Generation(),
			RC:         locked.RC(),
			Mouse:      locked.Mouse(),
			Keyboard:   newKeysView(locked.Keyboard()),
		}
		keys := locked.Keyboard()
		locked.Unlock()
		view = state
		text = strings.Join([]string{
			fmt.Sprintf("generation=%d", state.Generation),
			"rc: " + FormatRC(state.RC),
			"mouse: " + FormatMouse(state.Mouse),
			"keyboard: " + FormatKeys(keys),
		}, "\n")
	case "stats":
		stats := s.Source.Stats()
		view, text = stats, FormatStats(stats)
	default:
		return "", fmt.Errorf("unknown view %q", what)
	}
	if !s.OutputJSON {
		return text, nil
	}
	out, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WaitGeneration waits until the generation of src reaches target.
func WaitGeneration(ctx context.Context, src Source, target uint64) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for src.Generation() < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func showCmd(name string, aliases ...string) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    "print " + name,
		Func: func(c *ishell.Context) {
			out, err := ShellFrom(c).Show(name)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	}
}

var (
	// RCCmd prints the joystick channels and switches.
	RCCmd = showCmd("rc")
	// MouseCmd prints the mouse channel.
	MouseCmd = showCmd("mouse", "m")
	// KeysCmd prints pressed keys.
	KeysCmd = showCmd("keys", "k")
	// StateCmd prints the whole message of one decode.
	StateCmd = showCmd("state", "s")
	// StatsCmd prints receiver counters.
	StatsCmd = showCmd("stats")

	// WaitCmd waits for decodes and prints the state.
	WaitCmd = ishell.Cmd{
		Name:    "wait",
		Aliases: []string{"w"},
		Help:    "[COUNT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			count := uint64(1)
			if len(c.Args) > 0 {
				n, err := strconv.ParseUint(c.Args[0], 10, 32)
				if err != nil {
					c.Err(fmt.Errorf("invalid count %q", c.Args[0]))
					return
				}
				count = n
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(count)*s.WaitTimeout)
			defer cancel()
			if err := WaitGeneration(ctx, s.Source, s.Source.Generation()+count); err != nil {
				c.Err(fmt.Errorf("no frame received: %v", err))
				return
			}
			out, err := s.Show("state")
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.ListPorts()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				out, _ := json.Marshal(ports)
				c.Println(string(out))
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}
)
