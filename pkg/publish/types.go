// Package publish sends decoded frames to remote consumers.
package publish

import (
	"context"

	"github.com/NewLearnStream/dr16/pkg/dr16/msgs"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// TypedMsgHandler handles a received message.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *msgs.Typed) error
}

// HandleTypedMsgFunc is func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *msgs.Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	return f(ctx, msg, typed)
}
