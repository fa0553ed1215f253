package dr16

import (
	"errors"
	"fmt"
)

var (
	// ErrOverrun indicates a chunk doesn't fit in the frame buffer.
	ErrOverrun = errors.New("frame buffer overrun")
	// ErrFrameSize indicates the frame is not MessageSize bytes.
	ErrFrameSize = errors.New("invalid frame size")
)

// OverrunError is returned when the bytes received since the last idle
// event would exceed the frame buffer.
type OverrunError struct {
	Cursor   int
	Len      int
	Capacity int
}

// Error implements error.
func (e *OverrunError) Error() string {
	return fmt.Sprintf("frame buffer overrun: %d bytes at %d, capacity %d", e.Len, e.Cursor, e.Capacity)
}

// Unwrap returns ErrOverrun.
func (e *OverrunError) Unwrap() error {
	return ErrOverrun
}
