package dr16

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var sampleFrame = [MessageSize]byte{
	0x02, 0x01, // ch0 = 258
	0xff, 0xff, // ch1 = -1
	0x94, 0x02, // ch2 = 660
	0x6c, 0xfd, // ch3 = -660
	0x01, 0x03, // s_left = 1, s_right = 3
	0x64, 0x00, // x = 100
	0x9c, 0xff, // y = -100
	0x00, 0x80, // z = -32768
	0x01, 0x00, // left = 1, right = 0
	0x11, 0x80, // W, Shift, B
}

var sampleMessage = Message{
	RC: RcMessage{
		Ch0: 258, Ch1: -1, Ch2: 660, Ch3: -660,
		SwitchLeft: 1, SwitchRight: 3,
	},
	Mouse: MouseMessage{
		X: 100, Y: -100, Z: -32768,
		Left: 1, Right: 0,
	},
	Keyboard: KeyboardMessage{Keys: Keys(0).With(KeyW, KeyShift, KeyB)},
}

func TestDecodeMessage(t *testing.T) {
	require.Equal(t, sampleMessage, DecodeMessage(&sampleFrame))
}

func TestEncodeMessage(t *testing.T) {
	var b [MessageSize]byte
	sampleMessage.Encode(&b)
	require.Equal(t, sampleFrame, b)
	data, err := sampleMessage.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, sampleFrame[:], data)
}

func TestUnmarshalBinary(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		err  bool
	}{
		{"exact", sampleFrame[:], false},
		{"empty", nil, true},
		{"short", sampleFrame[:MessageSize-1], true},
		{"long", append(sampleFrame[:], 0), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var m Message
			err := m.UnmarshalBinary(tc.data)
			if tc.err {
				require.ErrorIs(t, err, ErrFrameSize)
				require.Equal(t, Message{}, m)
				return
			}
			require.NoError(t, err)
			require.Equal(t, sampleMessage, m)
		})
	}
}

func TestMessageSize(t *testing.T) {
	require.Equal(t, 20, MessageSize)
}

func TestKeyBits(t *testing.T) {
	queries := []func(KeyboardMessage) bool{
		KeyboardMessage.W, KeyboardMessage.S, KeyboardMessage.A, KeyboardMessage.D,
		KeyboardMessage.Shift, KeyboardMessage.Ctrl, KeyboardMessage.Q, KeyboardMessage.E,
		KeyboardMessage.R, KeyboardMessage.F, KeyboardMessage.G, KeyboardMessage.Z,
		KeyboardMessage.X, KeyboardMessage.C, KeyboardMessage.V, KeyboardMessage.B,
	}
	require.Len(t, AllKeys, 16)
	for bit, key := range AllKeys {
		t.Run(key.String(), func(t *testing.T) {
			var frame [MessageSize]byte
			frame[18+bit/8] = 1 << uint(bit%8)
			msg := DecodeMessage(&frame)
			require.Equal(t, Keys(key), msg.Keyboard.Keys)
			for n, query := range queries {
				require.Equalf(t, n == bit, query(msg.Keyboard), "query[%d]", n)
			}
			for _, other := range AllKeys {
				require.Equal(t, other == key, msg.Keyboard.Pressed(other))
			}
		})
	}
}

func TestKeysString(t *testing.T) {
	require.Equal(t, "", Keys(0).String())
	require.Equal(t, "W+Shift+B", Keys(0).With(KeyB, KeyShift, KeyW).String())
	require.Equal(t, []Key{KeyCtrl, KeyR}, Keys(0).With(KeyR, KeyCtrl).List())
	require.Equal(t, "?", Key(0).String())
}
