package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

// RcState is the joystick channels and switches.
type RcState struct {
	Ch0         int32  `protobuf:"zigzag32,1,opt,name=ch0,proto3" json:"ch0"`
	Ch1         int32  `protobuf:"zigzag32,2,opt,name=ch1,proto3" json:"ch1"`
	Ch2         int32  `protobuf:"zigzag32,3,opt,name=ch2,proto3" json:"ch2"`
	Ch3         int32  `protobuf:"zigzag32,4,opt,name=ch3,proto3" json:"ch3"`
	SwitchLeft  uint32 `protobuf:"varint,5,opt,name=switch_left,proto3" json:"switch_left"`
	SwitchRight uint32 `protobuf:"varint,6,opt,name=switch_right,proto3" json:"switch_right"`
}

// NewRcState converts a decoded RcMessage.
func NewRcState(m dr16.RcMessage) *RcState {
	return &RcState{
		Ch0:         int32(m.Ch0),
		Ch1:         int32(m.Ch1),
		Ch2:         int32(m.Ch2),
		Ch3:         int32(m.Ch3),
		SwitchLeft:  uint32(m.SwitchLeft),
		SwitchRight: uint32(m.SwitchRight),
	}
}

// RcMessage converts back to RcMessage.
func (m *RcState) RcMessage() dr16.RcMessage {
	return dr16.RcMessage{
		Ch0:         int16(m.Ch0),
		Ch1:         int16(m.Ch1),
		Ch2:         int16(m.Ch2),
		Ch3:         int16(m.Ch3),
		SwitchLeft:  uint8(m.SwitchLeft),
		SwitchRight: uint8(m.SwitchRight),
	}
}

// NewMessage implements Message.
func (m *RcState) NewMessage() fx.Message { return &RcState{} }

// TypeID implements SerializableMessage.
func (m *RcState) TypeID() uint32 { return RcStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *RcState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RcState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RcState) Reset() { *m = RcState{} }

// String implements proto.Message.
func (m *RcState) String() string { return proto.CompactTextString(m) }

// MouseState is the mouse channel.
type MouseState struct {
	X     int32  `protobuf:"zigzag32,1,opt,name=x,proto3" json:"x"`
	Y     int32  `protobuf:"zigzag32,2,opt,name=y,proto3" json:"y"`
	Z     int32  `protobuf:"zigzag32,3,opt,name=z,proto3" json:"z"`
	Left  uint32 `protobuf:"varint,4,opt,name=left,proto3" json:"left"`
	Right uint32 `protobuf:"varint,5,opt,name=right,proto3" json:"right"`
}

// NewMouseState converts a decoded MouseMessage.
func NewMouseState(m dr16.MouseMessage) *MouseState {
	return &MouseState{
		X:     int32(m.X),
		Y:     int32(m.Y),
		Z:     int32(m.Z),
		Left:  uint32(m.Left),
		Right: uint32(m.Right),
	}
}

// MouseMessage converts back to MouseMessage.
func (m *MouseState) MouseMessage() dr16.MouseMessage {
	return dr16.MouseMessage{
		X:     int16(m.X),
		Y:     int16(m.Y),
		Z:     int16(m.Z),
		Left:  uint8(m.Left),
		Right: uint8(m.Right),
	}
}

// NewMessage implements Message.
func (m *MouseState) NewMessage() fx.Message { return &MouseState{} }

// TypeID implements SerializableMessage.
func (m *MouseState) TypeID() uint32 { return MouseStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *MouseState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *MouseState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MouseState) Reset() { *m = MouseState{} }

// String implements proto.Message.
func (m *MouseState) String() string { return proto.CompactTextString(m) }

// KeyboardState is the keyboard bitmask. Pressed lists the key names for
// consumers not aware of the bit layout.
type KeyboardState struct {
	Keys    uint32   `protobuf:"varint,1,opt,name=keys,proto3" json:"keys"`
	Pressed []string `protobuf:"bytes,2,rep,name=pressed,proto3" json:"pressed,omitempty"`
}

// NewKeyboardState converts a decoded KeyboardMessage.
func NewKeyboardState(m dr16.KeyboardMessage) *KeyboardState {
	s := &KeyboardState{Keys: uint32(m.Keys)}
	for _, key := range m.Keys.List() {
		s.Pressed = append(s.Pressed, key.String())
	}
	return s
}

// KeyboardMessage converts back to KeyboardMessage.
func (m *KeyboardState) KeyboardMessage() dr16.KeyboardMessage {
	return dr16.KeyboardMessage{Keys: dr16.Keys(m.Keys)}
}

// NewMessage implements Message.
func (m *KeyboardState) NewMessage() fx.Message { return &KeyboardState{} }

// TypeID implements SerializableMessage.
func (m *KeyboardState) TypeID() uint32 { return KeyboardStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *KeyboardState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *KeyboardState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *KeyboardState) Reset() { *m = KeyboardState{} }

// String implements proto.Message.
func (m *KeyboardState) String() string { return proto.CompactTextString(m) }

// RemoteState is an Event message carrying a whole decoded frame.
type RemoteState struct {
	Rc         *RcState       `protobuf:"bytes,1,opt,name=rc,proto3" json:"rc,omitempty"`
	Mouse      *MouseState    `protobuf:"bytes,2,opt,name=mouse,proto3" json:"mouse,omitempty"`
	Keyboard   *KeyboardState `protobuf:"bytes,3,opt,name=keyboard,proto3" json:"keyboard,omitempty"`
	Generation uint64         `protobuf:"varint,4,opt,name=generation,proto3" json:"generation"`
	TimeNs     int64          `protobuf:"varint,5,opt,name=time_ns,proto3" json:"time_ns"`
}

// FromFrame creates a RemoteState from a decoded frame.
func FromFrame(f dr16.Frame) *RemoteState {
	s := &RemoteState{
		Rc:         NewRcState(f.Message.RC),
		Mouse:      NewMouseState(f.Message.Mouse),
		Keyboard:   NewKeyboardState(f.Message.Keyboard),
		Generation: f.Generation,
	}
	if !f.Time.IsZero() {
		s.TimeNs = f.Time.UnixNano()
	}
	return s
}

// Message converts back to dr16.Message. Missing parts are zero.
func (m *RemoteState) Message() dr16.Message {
	var msg dr16.Message
	if m.Rc != nil {
		msg.RC = m.Rc.RcMessage()
	}
	if m.Mouse != nil {
		msg.Mouse = m.Mouse.MouseMessage()
	}
	if m.Keyboard != nil {
		msg.Keyboard = m.Keyboard.KeyboardMessage()
	}
	return msg
}

// Frame converts back to dr16.Frame.
func (m *RemoteState) Frame() dr16.Frame {
	f := dr16.Frame{Message: m.Message(), Generation: m.Generation}
	if m.TimeNs != 0 {
		f.Time = time.Unix(0, m.TimeNs)
	}
	return f
}

// NewMessage implements Message.
func (m *RemoteState) NewMessage() fx.Message { return &RemoteState{} }

// TypeID implements SerializableMessage.
func (m *RemoteState) TypeID() uint32 { return RemoteStateEventTypeID }

// Serializable implements SerializableMessage.
func (m *RemoteState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RemoteState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RemoteState) Reset() { *m = RemoteState{} }

// String implements proto.Message.
func (m *RemoteState) String() string { return proto.CompactTextString(m) }

// ReceiverStats is an Event message with the receiver counters.
type ReceiverStats struct {
	Frames      uint64 `protobuf:"varint,1,opt,name=frames,proto3" json:"frames"`
	EmptyIdles  uint64 `protobuf:"varint,2,opt,name=empty_idles,proto3" json:"empty_idles"`
	ShortFrames uint64 `protobuf:"varint,3,opt,name=short_frames,proto3" json:"short_frames"`
	Overruns    uint64 `protobuf:"varint,4,opt,name=overruns,proto3" json:"overruns"`
	Decodes     uint64 `protobuf:"varint,5,opt,name=decodes,proto3" json:"decodes"`
}

// NewReceiverStats converts dr16.Stats.
func NewReceiverStats(s dr16.Stats) *ReceiverStats {
	return &ReceiverStats{
		Frames:      s.Frames,
		EmptyIdles:  s.EmptyIdles,
		ShortFrames: s.ShortFrames,
		Overruns:    s.Overruns,
		Decodes:     s.Decodes,
	}
}

// NewMessage implements Message.
func (m *ReceiverStats) NewMessage() fx.Message { return &ReceiverStats{} }

// TypeID implements SerializableMessage.
func (m *ReceiverStats) TypeID() uint32 { return ReceiverStatsEventTypeID }

// Serializable implements SerializableMessage.
func (m *ReceiverStats) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ReceiverStats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReceiverStats) Reset() { *m = ReceiverStats{} }

// String implements proto.Message.
func (m *ReceiverStats) String() string { return proto.CompactTextString(m) }

// GroupRemote is the type ID group of DR16 messages.
const GroupRemote uint32 = 0x00160000

// TypeIDs
const (
	RcStateEventTypeID       uint32 = GroupRemote | TypeIDKindEvent | 0x0000
	MouseStateEventTypeID    uint32 = GroupRemote | TypeIDKindEvent | 0x0001
	KeyboardStateEventTypeID uint32 = GroupRemote | TypeIDKindEvent | 0x0002
	RemoteStateEventTypeID   uint32 = GroupRemote | TypeIDKindEvent | 0x0003
	ReceiverStatsEventTypeID uint32 = GroupRemote | TypeIDKindEvent | 0x0004
)
