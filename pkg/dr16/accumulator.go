package dr16

import "sync/atomic"

// Accumulator collects chunks into frames and hands complete frames to a
// single consumer without locking.
//
// It keeps three buffers. The producer fills the back buffer, the consumer
// reads the front buffer, and the third one sits in the middle slot. Idle
// swaps back and middle, Latest swaps front and middle if the middle slot
// holds a frame newer than the front one. Neither side ever touches the
// buffer owned by the other, so a frame being decoded can't be overwritten.
//
// Write and Idle must be called from one producer context; Latest from one
// consumer context.
type Accumulator struct {
	bufs [3][MessageSize]byte
	lens [3]int

	// producer
	back   uint32
	cursor int

	// consumer
	front uint32

	middle atomic.Uint32 // buffer index | slotFresh
}

const slotFresh uint32 = 4

// NewAccumulator creates an Accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{back: 0, front: 1}
	a.middle.Store(2)
	return a
}

// Write appends a chunk to the current frame. A chunk which doesn't fit is
// rejected as a whole with an *OverrunError and nothing is written.
func (a *Accumulator) Write(p []byte) (int, error) {
	if len(p) > MessageSize-a.cursor {
		return 0, &OverrunError{Cursor: a.cursor, Len: len(p), Capacity: MessageSize}
	}
	n := copy(a.bufs[a.back][a.cursor:], p)
	a.cursor += n
	return n, nil
}

// Pending returns the number of bytes in the current frame.
func (a *Accumulator) Pending() int {
	return a.cursor
}

// Idle ends the current frame and resets the cursor. The frame is
// published if it has any bytes, with the bytes after the received length
// cleared. It returns false if nothing was published.
func (a *Accumulator) Idle() bool {
	n := a.cursor
	a.cursor = 0
	if n == 0 {
		return false
	}
	buf := &a.bufs[a.back]
	for i := n; i < MessageSize; i++ {
		buf[i] = 0
	}
	a.lens[a.back] = n
	prev := a.middle.Swap(a.back | slotFresh)
	a.back = prev &^ slotFresh
	return true
}

// Latest returns the most recently published frame and its received
// length. The frame stays valid until the next call of Latest. Before any
// frame is published it's all zeros with length 0.
func (a *Accumulator) Latest() (*[MessageSize]byte, int) {
	if a.middle.Load()&slotFresh != 0 {
		prev := a.middle.Swap(a.front)
		a.front = prev &^ slotFresh
	}
	return &a.bufs[a.front], a.lens[a.front]
}
