package dr16

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/NewLearnStream/dr16/pkg/link"
)

// Frame is a decoded frame passed to FrameHandler.
type Frame struct {
	Message    Message
	Generation uint64
	Time       time.Time
}

// FrameHandler is called after each decode.
type FrameHandler interface {
	HandleFrame(context.Context, Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame Frame) {
	f(ctx, frame)
}

// Stats are the counters of a Device.
type Stats struct {
	Frames      uint64 `json:"frames"`
	EmptyIdles  uint64 `json:"empty_idles"`
	ShortFrames uint64 `json:"short_frames"`
	Overruns    uint64 `json:"overruns"`
	Decodes     uint64 `json:"decodes"`
	Pending     int    `json:"pending"`
}

// Device receives frames from a Link and keeps the latest decoded Message.
type Device struct {
	Link    link.Link
	Handler FrameHandler

	acc *Accumulator
	sig *Signal

	decodeLock sync.Mutex
	lock       sync.Mutex
	message    Message
	generation uint64

	frames      atomic.Uint64
	emptyIdles  atomic.Uint64
	shortFrames atomic.Uint64
	overruns    atomic.Uint64
	decodes     atomic.Uint64
}

// New creates a Device and attaches it to the link.
func New(l link.Link) *Device {
	d := &Device{
		Link: l,
		acc:  NewAccumulator(),
		sig:  NewSignal(),
	}
	l.Attach(d)
	return d
}

// Name implements Named.
func (d *Device) Name() string {
	return "dr16"
}

// Start arms continuous reception.
func (d *Device) Start() error {
	return d.Link.StartReceive(MessageSize)
}

// OnChunk implements link.Receiver.
func (d *Device) OnChunk(p []byte) error {
	_, err := d.acc.Write(p)
	if err != nil {
		d.overruns.Add(1)
	}
	return err
}

// OnIdle implements link.Receiver. It always increments the wake-up
// signal, even for an idle event without bytes.
func (d *Device) OnIdle() {
	n := d.acc.Pending()
	switch {
	case n == 0:
		d.emptyIdles.Add(1)
	case n < MessageSize:
		d.shortFrames.Add(1)
		fallthrough
	default:
		d.frames.Add(1)
	}
	d.acc.Idle()
	d.sig.Put()
}

// Decode blocks until an idle event is pending, consumes it and decodes
// the latest frame. There is no timeout other than ctx; without further
// idle events Decode blocks until ctx is done and returns ctx.Err().
// When idle events are queued faster than Decode is called, each call
// consumes one and decodes the newest frame at that moment.
func (d *Device) Decode(ctx context.Context) error {
	if err := d.sig.Get(ctx); err != nil {
		return err
	}
	d.decodeLock.Lock()
	buf, _ := d.acc.Latest()
	msg := DecodeMessage(buf)
	d.lock.Lock()
	d.message = msg
	d.generation++
	gen := d.generation
	d.lock.Unlock()
	d.decodeLock.Unlock()
	d.decodes.Add(1)

	if h := d.Handler; h != nil {
		h.HandleFrame(ctx, Frame{Message: msg, Generation: gen, Time: time.Now()})
	}
	return nil
}

// DecodeTimeout is Decode with a timeout.
func (d *Device) DecodeTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.Decode(ctx)
}

type doneNotifier interface {
	Done() <-chan struct{}
	Err() error
}

// Run implements Runnable. It starts reception and decodes until ctx is
// done or the link stops.
func (d *Device) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	if closer, ok := d.Link.(io.Closer); ok {
		defer closer.Close()
	}
	notifier, _ := d.Link.(doneNotifier)
	if notifier != nil {
		var cancel func()
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-notifier.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
	}
	for {
		err := d.Decode(ctx)
		if err == nil {
			continue
		}
		if notifier != nil {
			select {
			case <-notifier.Done():
				if linkErr := notifier.Err(); linkErr != nil {
					glog.Errorf("link stopped: %v", linkErr)
					return linkErr
				}
			default:
			}
		}
		return err
	}
}

// RC returns the joystick channels and switches.
func (d *Device) RC() RcMessage {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.message.RC
}

// Mouse returns the mouse state.
func (d *Device) Mouse() MouseMessage {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.message.Mouse
}

// Keyboard returns the keyboard state.
func (d *Device) Keyboard() KeyboardMessage {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.message.Keyboard
}

// Message returns the whole decoded message.
func (d *Device) Message() Message {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.message
}

// Generation returns the number of completed decodes.
func (d *Device) Generation() uint64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.generation
}

// Lock holds the message lock until Unlock is called on the returned view,
// so several reads observe the same decode.
func (d *Device) Lock() *LockedMessage {
	d.lock.Lock()
	return &LockedMessage{d: d}
}

// Stats returns the counters.
func (d *Device) Stats() Stats {
	return Stats{
		Frames:      d.frames.Load(),
		EmptyIdles:  d.emptyIdles.Load(),
		ShortFrames: d.shortFrames.Load(),
		Overruns:    d.overruns.Load(),
		Decodes:     d.decodes.Load(),
		Pending:     d.sig.Pending(),
	}
}

// LockedMessage reads the message of a Device while holding its lock.
type LockedMessage struct {
	d *Device
}

// RC returns the joystick channels and switches.
func (l *LockedMessage) RC() RcMessage { return l.d.message.RC }

// Mouse returns the mouse state.
func (l *LockedMessage) Mouse() MouseMessage { return l.d.message.Mouse }

// Keyboard returns the keyboard state.
func (l *LockedMessage) Keyboard() KeyboardMessage { return l.d.message.Keyboard }

// Message returns the whole decoded message.
func (l *LockedMessage) Message() Message { return l.d.message }

// Generation returns the number of completed decodes.
func (l *LockedMessage) Generation() uint64 { return l.d.generation }

// Unlock releases the lock.
func (l *LockedMessage) Unlock() {
	l.d.lock.Unlock()
}
