package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipeNotStarted(t *testing.T) {
	p := NewPipe()
	require.Equal(t, ErrNoReceiver, p.StartReceive(20))
	p.Attach(ReceiverFuncs{})
	require.Equal(t, ErrNotStarted, p.Chunk([]byte{1}))
	require.Equal(t, ErrNotStarted, p.Idle())
	require.Equal(t, ErrNotStarted, p.Frame([]byte{1}))
	require.NoError(t, p.StartReceive(20))
	require.Equal(t, ErrAlreadyStarted, p.StartReceive(20))
	require.Equal(t, 20, p.Capacity())
}

func TestPipeFrame(t *testing.T) {
	errReject := errors.New("reject")
	var events []string
	p := NewPipe()
	p.Attach(ReceiverFuncs{
		Chunk: func(b []byte) error {
			events = append(events, "chunk "+string(b))
			if string(b) == "x" {
				return errReject
			}
			return nil
		},
		Idle: func() { events = append(events, "idle") },
	})
	require.NoError(t, p.StartReceive(20))
	require.NoError(t, p.Frame([]byte("ab"), []byte("c")))
	require.Equal(t, errReject, p.Frame([]byte("x"), []byte("d")))
	require.NoError(t, p.Frame())
	require.Equal(t, []string{
		"chunk ab", "chunk c", "idle",
		"chunk x", "chunk d", "idle",
		"idle",
	}, events)
}
