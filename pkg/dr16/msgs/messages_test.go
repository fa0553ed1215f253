package msgs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NewLearnStream/dr16/pkg/dr16"
)

var testFrame = dr16.Frame{
	Message: dr16.Message{
		RC: dr16.RcMessage{
			Ch0: 364, Ch1: -660, Ch2: 1684, Ch3: -1,
			SwitchLeft: 1, SwitchRight: 2,
		},
		Mouse: dr16.MouseMessage{
			X: -32768, Y: 32767, Z: 0,
			Left: 0, Right: 1,
		},
		Keyboard: dr16.KeyboardMessage{Keys: dr16.Keys(0).With(dr16.KeyCtrl, dr16.KeyV)},
	},
	Generation: 42,
	Time:       time.Unix(1700000000, 123456789),
}

func TestFromFrame(t *testing.T) {
	state := FromFrame(testFrame)
	require.Equal(t, []string{"Ctrl", "V"}, state.Keyboard.Pressed)
	require.Equal(t, int32(-660), state.Rc.Ch1)
	require.Equal(t, int64(1700000000123456789), state.TimeNs)
	require.Equal(t, testFrame.Message, state.Message())
	f := state.Frame()
	require.Equal(t, testFrame.Generation, f.Generation)
	require.True(t, testFrame.Time.Equal(f.Time))
	require.Equal(t, dr16.Message{}, (&RemoteState{}).Message())
	require.True(t, (&RemoteState{}).Frame().Time.IsZero())
}

func TestTypedRemoteState(t *testing.T) {
	typed, err := TypedFrom(FromFrame(testFrame))
	require.NoError(t, err)
	require.Equal(t, RemoteStateEventTypeID, typed.TypeID)
	require.True(t, typed.IsEvent())
	typed.Sequence = 7

	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint64(7), decoded.Sequence)
	require.Equal(t, RemoteStateEventTypeID, decoded.TypeID)

	msg, err := decoded.Decode()
	require.NoError(t, err)
	state, ok := msg.(*RemoteState)
	require.True(t, ok)
	require.Equal(t, testFrame.Message, state.Message())
	require.Equal(t, uint64(42), state.Generation)
	require.Equal(t, []string{"Ctrl", "V"}, state.Keyboard.Pressed)
}

func TestTypedParts(t *testing.T) {
	parts := []SerializableMessage{
		NewRcState(testFrame.Message.RC),
		NewMouseState(testFrame.Message.Mouse),
		NewKeyboardState(testFrame.Message.Keyboard),
		NewReceiverStats(dr16.Stats{Frames: 3, Overruns: 1}),
	}
	for _, part := range parts {
		typed, err := TypedFrom(part)
		require.NoError(t, err)
		msg, err := typed.Decode()
		require.NoError(t, err)
		require.Equal(t, part, msg)
	}
}

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(nil)
	require.Equal(t, ErrNotSerializable, err)

	_, err = Typed{TypeID: 0x1234}.Decode()
	require.Equal(t, &ErrUnknownType{TypeID: 0x1234}, err)
	require.Equal(t, "unknown type: 1234", err.Error())

	_, err = DecodeTyped([]byte{0xff})
	require.Error(t, err)
}
