package publish

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/NewLearnStream/dr16/pkg/dr16/msgs"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

// Subscriber reads packets and dispatches the decoded messages.
type Subscriber struct {
	Reader  PacketReader
	Handler TypedMsgHandler
}

// NewSubscriber creates a Subscriber.
func NewSubscriber(r PacketReader, h TypedMsgHandler) *Subscriber {
	return &Subscriber{Reader: r, Handler: h}
}

// Run implements Runnable. If the reader is an io.Closer, it's closed when
// ctx is done to unblock reading.
func (s *Subscriber) Run(ctx context.Context) error {
	if closer, ok := s.Reader.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, func() error {
			return s.receive(ctx)
		})
	}
	return s.receive(ctx)
}

func (s *Subscriber) receive(ctx context.Context) error {
	for {
		pkt, err := s.Reader.ReadPacket()
		if err != nil {
			return err
		}
		typed, err := msgs.DecodeTyped(pkt)
		if err != nil {
			return err
		}
		msg, err := typed.Decode()
		if err != nil {
			// unknown messages are ignored.
			glog.V(2).Infof("skip message seq=%d: %v", typed.Sequence, err)
			continue
		}
		if h := s.Handler; h != nil {
			if err = h.HandleTypedMsg(ctx, msg, typed); err != nil {
				return err
			}
		}
	}
}
