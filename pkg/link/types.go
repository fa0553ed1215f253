// Package link abstracts the serial peripheral feeding a frame receiver.
package link

import "errors"

// A link delivers bytes in chunks and marks frame boundaries with idle-line
// events. Both callbacks run in the link's receive context: they are never
// invoked concurrently with each other, and must return without blocking.

// Receiver is called by a Link when bytes arrive or the line goes idle.
type Receiver interface {
	// OnChunk receives the next chunk of the current frame. The slice is
	// only valid during the call.
	OnChunk([]byte) error
	// OnIdle marks the end of the current frame.
	OnIdle()
}

// ReceiverFuncs is the func form of Receiver.
type ReceiverFuncs struct {
	Chunk func([]byte) error
	Idle  func()
}

// OnChunk implements Receiver.
func (f ReceiverFuncs) OnChunk(p []byte) error {
	if f.Chunk != nil {
		return f.Chunk(p)
	}
	return nil
}

// OnIdle implements Receiver.
func (f ReceiverFuncs) OnIdle() {
	if f.Idle != nil {
		f.Idle()
	}
}

// Link is a serial peripheral with chunked receive and idle-line detection.
type Link interface {
	// Attach registers the receiver for chunk and idle callbacks.
	Attach(Receiver)
	// StartReceive arms continuous reception with chunks no larger
	// than capacity bytes.
	StartReceive(capacity int) error
}

var (
	// ErrNotStarted indicates reception has not been armed.
	ErrNotStarted = errors.New("receive not started")
	// ErrAlreadyStarted indicates StartReceive was called twice.
	ErrAlreadyStarted = errors.New("receive already started")
	// ErrNoReceiver indicates StartReceive was called before Attach.
	ErrNoReceiver = errors.New("no receiver attached")
)
