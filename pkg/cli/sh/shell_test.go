package sh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	"github.com/NewLearnStream/dr16/pkg/link"
)

var testMessage = dr16.Message{
	RC: dr16.RcMessage{Ch0: 364, Ch1: -660, Ch2: 0, Ch3: 1, SwitchLeft: 1, SwitchRight: 3},
	Mouse: dr16.MouseMessage{
		X: -5, Y: 7, Z: 0, Left: 1, Right: 0,
	},
	Keyboard: dr16.KeyboardMessage{Keys: dr16.Keys(0).With(dr16.KeyW, dr16.KeyShift)},
}

func newTestShell(t *testing.T) (*Shell, *link.Pipe) {
	pipe := link.NewPipe()
	device := dr16.New(pipe)
	require.NoError(t, device.Start())
	frame, err := testMessage.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, pipe.Frame(frame))
	require.NoError(t, device.DecodeTimeout(time.Second))
	return &Shell{Source: device, WaitTimeout: time.Second}, pipe
}

func TestShow(t *testing.T) {
	s, _ := newTestShell(t)
	testCases := []struct {
		what string
		text string
		json string
	}{
		{
			"rc",
			"ch0=364 ch1=-660 ch2=0 ch3=1 s_left=1 s_right=3",
			`{"ch0":364,"ch1":-660,"ch2":0,"ch3":1,"s_left":1,"s_right":3}`,
		},
		{
			"mouse",
			"x=-5 y=7 z=0 left=1 right=0",
			`{"x":-5,"y":7,"z":0,"left":1,"right":0}`,
		},
		{
			"keys",
			"keys=0x0011 [W+Shift]",
			`{"keys":17,"pressed":["W","Shift"]}`,
		},
		{
			"stats",
			"frames=1 short=0 empty=0 overruns=0 decodes=1 pending=0",
			`{"frames":1,"empty_idles":0,"short_frames":0,"overruns":0,"decodes":1,"pending":0}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.what, func(t *testing.T) {
			s.OutputJSON = false
			out, err := s.Show(tc.what)
			require.NoError(t, err)
			require.Equal(t, tc.text, out)
			s.OutputJSON = true
			out, err = s.Show(tc.what)
			require.NoError(t, err)
			require.JSONEq(t, tc.json, out)
		})
	}
	_, err := s.Show("nothing")
	require.Error(t, err)
}

func TestShowState(t *testing.T) {
	s, _ := newTestShell(t)
	out, err := s.Show("state")
	require.NoError(t, err)
	require.Equal(t, "generation=1\n"+
		"rc: ch0=364 ch1=-660 ch2=0 ch3=1 s_left=1 s_right=3\n"+
		"mouse: x=-5 y=7 z=0 left=1 right=0\n"+
		"keyboard: keys=0x0011 [W+Shift]", out)
	s.OutputJSON = true
	out, err = s.Show("state")
	require.NoError(t, err)
	require.Contains(t, out, `"generation":1`)
	require.Contains(t, out, `"pressed":["W","Shift"]`)
}

func TestWaitGeneration(t *testing.T) {
	s, pipe := newTestShell(t)
	device := s.Source.(*dr16.Device)
	go func() {
		for i := 0; i < 2; i++ {
			pipe.Frame(make([]byte, dr16.MessageSize))
			device.DecodeTimeout(time.Second)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, WaitGeneration(ctx, s.Source, 3))
	require.Equal(t, uint64(3), device.Generation())

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, WaitGeneration(ctx, s.Source, 4))
}
