package dr16

import (
	"encoding/binary"
	"fmt"
)

// Sizes of the serialized messages.
const (
	RcMessageSize       = 10
	MouseMessageSize    = 8
	KeyboardMessageSize = 2
	MessageSize         = RcMessageSize + MouseMessageSize + KeyboardMessageSize
)

// RcMessage carries the joystick channels and the two switches.
type RcMessage struct {
	Ch0         int16 `json:"ch0"`
	Ch1         int16 `json:"ch1"`
	Ch2         int16 `json:"ch2"`
	Ch3         int16 `json:"ch3"`
	SwitchLeft  uint8 `json:"s_left"`
	SwitchRight uint8 `json:"s_right"`
}

// MouseMessage carries the mouse deltas and buttons.
type MouseMessage struct {
	X     int16 `json:"x"`
	Y     int16 `json:"y"`
	Z     int16 `json:"z"`
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

// KeyboardMessage carries the keyboard state.
type KeyboardMessage struct {
	Keys Keys `json:"keys"`
}

// Message is a complete decoded frame.
type Message struct {
	RC       RcMessage       `json:"rc"`
	Mouse    MouseMessage    `json:"mouse"`
	Keyboard KeyboardMessage `json:"keyboard"`
}

// Frame layout, all multi-byte fields are little-endian:
//
//	0..7   rc.ch0..ch3     int16 x4
//	8      rc.s_left       uint8
//	9      rc.s_right      uint8
//	10..15 mouse.x, y, z   int16 x3
//	16     mouse.left      uint8
//	17     mouse.right     uint8
//	18..19 keyboard        uint16 bitmask, see Key
var le = binary.LittleEndian

// DecodeMessage decodes a complete frame.
func DecodeMessage(b *[MessageSize]byte) (m Message) {
	m.RC.decode(b[0:RcMessageSize])
	m.Mouse.decode(b[RcMessageSize : RcMessageSize+MouseMessageSize])
	m.Keyboard.decode(b[RcMessageSize+MouseMessageSize:])
	return
}

// Encode writes the message into a frame.
func (m *Message) Encode(b *[MessageSize]byte) {
	m.RC.encode(b[0:RcMessageSize])
	m.Mouse.encode(b[RcMessageSize : RcMessageSize+MouseMessageSize])
	m.Keyboard.encode(b[RcMessageSize+MouseMessageSize:])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	var b [MessageSize]byte
	m.Encode(&b)
	return b[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) != MessageSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(data), MessageSize)
	}
	*m = DecodeMessage((*[MessageSize]byte)(data))
	return nil
}

func (m *RcMessage) decode(b []byte) {
	m.Ch0 = int16(le.Uint16(b[0:]))
	m.Ch1 = int16(le.Uint16(b[2:]))
	m.Ch2 = int16(le.Uint16(b[4:]))
	m.Ch3 = int16(le.Uint16(b[6:]))
	m.SwitchLeft, m.SwitchRight = b[8], b[9]
}

func (m *RcMessage) encode(b []byte) {
	le.PutUint16(b[0:], uint16(m.Ch0))
	le.PutUint16(b[2:], uint16(m.Ch1))
	le.PutUint16(b[4:], uint16(m.Ch2))
	le.PutUint16(b[6:], uint16(m.Ch3))
	b[8], b[9] = m.SwitchLeft, m.SwitchRight
}

func (m *MouseMessage) decode(b []byte) {
	m.X = int16(le.Uint16(b[0:]))
	m.Y = int16(le.Uint16(b[2:]))
	m.Z = int16(le.Uint16(b[4:]))
	m.Left, m.Right = b[6], b[7]
}

func (m *MouseMessage) encode(b []byte) {
	le.PutUint16(b[0:], uint16(m.X))
	le.PutUint16(b[2:], uint16(m.Y))
	le.PutUint16(b[4:], uint16(m.Z))
	b[6], b[7] = m.Left, m.Right
}

func (m *KeyboardMessage) decode(b []byte) {
	m.Keys = Keys(le.Uint16(b))
}

func (m *KeyboardMessage) encode(b []byte) {
	le.PutUint16(b, uint16(m.Keys))
}
