package dr16

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewLearnStream/dr16/pkg/link"
)

type deviceTestEnv struct {
	t      *testing.T
	pipe   *link.Pipe
	device *Device
}

func newDeviceTestEnv(t *testing.T) *deviceTestEnv {
	env := &deviceTestEnv{t: t, pipe: link.NewPipe()}
	env.device = New(env.pipe)
	return env
}

func (e *deviceTestEnv) start() *deviceTestEnv {
	require.NoError(e.t, e.device.Start())
	require.Equal(e.t, MessageSize, e.pipe.Capacity())
	return e
}

func (e *deviceTestEnv) frame(chunks ...[]byte) *deviceTestEnv {
	require.NoError(e.t, e.pipe.Frame(chunks...))
	return e
}

func (e *deviceTestEnv) decode() *deviceTestEnv {
	require.NoError(e.t, e.device.DecodeTimeout(time.Second))
	return e
}

func (e *deviceTestEnv) noDecode() *deviceTestEnv {
	require.Equal(e.t, context.DeadlineExceeded, e.device.DecodeTimeout(20*time.Millisecond))
	return e
}

func TestDeviceRoundTrip(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(sampleFrame[:7], sampleFrame[7:12], sampleFrame[12:]).decode()
	require.Equal(t, sampleMessage.RC, env.device.RC())
	require.Equal(t, sampleMessage.Mouse, env.device.Mouse())
	require.Equal(t, sampleMessage.Keyboard, env.device.Keyboard())
	require.Equal(t, sampleMessage, env.device.Message())
	require.Equal(t, uint64(1), env.device.Generation())
}

func TestDeviceNoLeakBetweenFrames(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(filledFrame(0x00)).decode()
	require.Equal(t, Message{}, env.device.Message())

	env.frame(filledFrame(0xff)[:9], filledFrame(0xff)[9:]).decode()
	rc, mouse, keyboard := env.device.RC(), env.device.Mouse(), env.device.Keyboard()
	require.Equal(t, RcMessage{Ch0: -1, Ch1: -1, Ch2: -1, Ch3: -1, SwitchLeft: 0xff, SwitchRight: 0xff}, rc)
	require.Equal(t, MouseMessage{X: -1, Y: -1, Z: -1, Left: 0xff, Right: 0xff}, mouse)
	require.Equal(t, Keys(0xffff), keyboard.Keys)
	for _, key := range AllKeys {
		require.True(t, keyboard.Pressed(key))
	}
}

func TestDeviceSignalAccumulation(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(filledFrame(0x01)).frame(sampleFrame[:])
	require.Equal(t, 2, env.device.Stats().Pending)
	env.decode().decode().noDecode()
	require.Equal(t, uint64(2), env.device.Generation())
	require.Equal(t, sampleMessage, env.device.Message())
}

func TestDeviceEmptyIdle(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(sampleFrame[:]).decode()
	env.frame().decode()
	require.Equal(t, sampleMessage, env.device.Message())
	require.Equal(t, uint64(2), env.device.Generation())
	stats := env.device.Stats()
	require.Equal(t, uint64(1), stats.Frames)
	require.Equal(t, uint64(1), stats.EmptyIdles)
}

func TestDeviceOverrun(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	require.NoError(t, env.pipe.Chunk(sampleFrame[:]))
	require.ErrorIs(t, env.pipe.Chunk([]byte{0xaa}), ErrOverrun)
	require.NoError(t, env.pipe.Idle())
	env.decode()
	require.Equal(t, sampleMessage, env.device.Message())
	require.Equal(t, uint64(1), env.device.Stats().Overruns)

	err := env.pipe.Frame(filledFrame(0xff)[:15], filledFrame(0xff)[:15])
	require.ErrorIs(t, err, ErrOverrun)
	env.decode()
	expected := filledFrame(0xff)
	for i := 15; i < MessageSize; i++ {
		expected[i] = 0
	}
	var m Message
	require.NoError(t, m.UnmarshalBinary(expected))
	require.Equal(t, m, env.device.Message())
	stats := env.device.Stats()
	require.Equal(t, uint64(2), stats.Overruns)
	require.Equal(t, uint64(1), stats.ShortFrames)
}

func TestDeviceDecodeCanceled(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- env.device.Decode(ctx)
	}()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("Decode not canceled")
	}
}

func isFilled(rc RcMessage, b byte) bool {
	v := int16(uint16(b) | uint16(b)<<8)
	return rc == RcMessage{Ch0: v, Ch1: v, Ch2: v, Ch3: v, SwitchLeft: b, SwitchRight: b}
}

func isFilledMouse(m MouseMessage, b byte) bool {
	v := int16(uint16(b) | uint16(b)<<8)
	return m == MouseMessage{X: v, Y: v, Z: v, Left: b, Right: b}
}

func TestDeviceAccessorAtomic(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for n := 0; ctx.Err() == nil; n++ {
			env.pipe.Frame(filledFrame(byte(n&1) * 0xff))
		}
	}()
	go func() {
		defer wg.Done()
		for env.device.Decode(ctx) == nil {
		}
	}()

	for i := 0; i < 20000; i++ {
		rc := env.device.RC()
		require.Truef(t, isFilled(rc, 0) || isFilled(rc, 0xff), "torn rc %+v", rc)
		mouse := env.device.Mouse()
		require.Truef(t, isFilledMouse(mouse, 0) || isFilledMouse(mouse, 0xff), "torn mouse %+v", mouse)
		keys := env.device.Keyboard().Keys
		require.Truef(t, keys == 0 || keys == 0xffff, "torn keys %x", keys)

		locked := env.device.Lock()
		msg := locked.Message()
		rc, mouse, keyboard := locked.RC(), locked.Mouse(), locked.Keyboard()
		locked.Unlock()
		require.Equal(t, msg, Message{RC: rc, Mouse: mouse, Keyboard: keyboard})
		b := rc.SwitchLeft
		consistent := isFilled(rc, b) && isFilledMouse(mouse, b) && keyboard.Keys == Keys(uint16(b)|uint16(b)<<8)
		require.Truef(t, consistent, "inconsistent message %+v", msg)
	}
	cancel()
	wg.Wait()
	require.NotZero(t, env.device.Generation())
}

func TestDeviceCrossAccessorGenerations(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(filledFrame(0x00)).decode()
	rc := env.device.RC()
	env.frame(filledFrame(0xff)).decode()
	mouse := env.device.Mouse()
	require.True(t, isFilled(rc, 0x00))
	require.True(t, isFilledMouse(mouse, 0xff))

	// bracketed reads see a single generation.
	locked := env.device.Lock()
	rc, mouse = locked.RC(), locked.Mouse()
	gen := locked.Generation()
	locked.Unlock()
	require.Equal(t, uint64(2), gen)
	require.True(t, isFilled(rc, 0xff))
	require.True(t, isFilledMouse(mouse, 0xff))
}

func TestDeviceLockBlocksDecode(t *testing.T) {
	env := newDeviceTestEnv(t).start()
	env.frame(filledFrame(0x00)).decode()
	locked := env.device.Lock()
	env.frame(filledFrame(0xff))
	errCh := make(chan error, 1)
	go func() {
		errCh <- env.device.DecodeTimeout(time.Second)
	}()
	time.Sleep(20 * time.Millisecond)
	require.True(t, isFilled(locked.RC(), 0x00))
	require.True(t, isFilledMouse(locked.Mouse(), 0x00))
	locked.Unlock()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("decode blocked")
	}
	require.True(t, isFilled(env.device.RC(), 0xff))
}

func TestDeviceHandler(t *testing.T) {
	env := newDeviceTestEnv(t)
	frameCh := make(chan Frame, 2)
	env.device.Handler = HandleFrameFunc(func(ctx context.Context, f Frame) {
		frameCh <- f
	})
	env.start().frame(sampleFrame[:]).decode()
	f := <-frameCh
	require.Equal(t, sampleMessage, f.Message)
	require.Equal(t, uint64(1), f.Generation)
	require.False(t, f.Time.IsZero())
}

func TestDeviceRun(t *testing.T) {
	env := newDeviceTestEnv(t)
	frameCh := make(chan Frame, 1)
	env.device.Handler = HandleFrameFunc(func(ctx context.Context, f Frame) {
		frameCh <- f
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- env.device.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		return env.pipe.Frame(sampleFrame[:]) == nil
	}, time.Second, time.Millisecond)
	select {
	case f := <-frameCh:
		require.Equal(t, sampleMessage, f.Message)
	case <-time.After(time.Second):
		t.Fatal("frame timeout")
	}
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("Run not stopped")
	}
	require.ErrorIs(t, env.device.Start(), link.ErrAlreadyStarted)
}

func TestDeviceRunStream(t *testing.T) {
	r, w := io.Pipe()
	device := New(link.NewStream(r))
	frameCh := make(chan Frame, 1)
	device.Handler = HandleFrameFunc(func(ctx context.Context, f Frame) {
		frameCh <- f
	})
	errCh := make(chan error, 1)
	go func() {
		errCh <- device.Run(context.Background())
	}()
	_, err := w.Write(sampleFrame[:])
	require.NoError(t, err)
	select {
	case f := <-frameCh:
		require.Equal(t, sampleMessage, f.Message)
	case <-time.After(time.Second):
		t.Fatal("frame timeout")
	}
	w.Close()
	select {
	case err := <-errCh:
		require.Equal(t, io.EOF, err)
	case <-time.After(time.Second):
		t.Fatal("Run not stopped")
	}
}
