package publish

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/NewLearnStream/dr16/pkg/dr16"
	"github.com/NewLearnStream/dr16/pkg/dr16/msgs"
	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

// Publisher encodes decoded frames as RemoteState events and writes them
// to a PacketWriter. It implements dr16.FrameHandler.
type Publisher struct {
	Writer PacketWriter
	// OnlyChanges skips frames with the same message as the last published.
	OnlyChanges bool
	// Interval is the minimum time between two published frames.
	Interval time.Duration

	lock      sync.Mutex
	sequence  uint64
	last      dr16.Message
	lastTime  time.Time
	published uint64
	skipped   uint64
}

// NewPublisher creates a Publisher.
func NewPublisher(w PacketWriter) *Publisher {
	return &Publisher{Writer: w}
}

// HandleFrame implements dr16.FrameHandler.
func (p *Publisher) HandleFrame(ctx context.Context, f dr16.Frame) {
	if err := p.Publish(f); err != nil {
		glog.Errorf("publish frame %d error: %v", f.Generation, err)
	}
}

// Publish writes the frame unless it's filtered.
func (p *Publisher) Publish(f dr16.Frame) error {
	now := f.Time
	if now.IsZero() {
		now = time.Now()
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.published > 0 {
		if p.OnlyChanges && f.Message == p.last {
			p.skipped++
			return nil
		}
		if p.Interval > 0 && now.Sub(p.lastTime) < p.Interval {
			p.skipped++
			return nil
		}
	}
	if err := p.send(msgs.FromFrame(f)); err != nil {
		return err
	}
	p.last, p.lastTime = f.Message, now
	p.published++
	return nil
}

// PublishMsg writes any serializable message, bypassing the filters.
func (p *Publisher) PublishMsg(msg fx.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.send(msg)
}

func (p *Publisher) send(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	p.sequence++
	typed.Sequence = p.sequence
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	if glog.V(4) {
		glog.Infof("PUB seq=%d type=%x %d bytes", typed.Sequence, typed.TypeID, len(pkt))
	}
	return p.Writer.WritePacket(pkt)
}

// Sequence returns the sequence number of the last sent message.
func (p *Publisher) Sequence() uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.sequence
}

// Counters returns the number of published and skipped frames.
func (p *Publisher) Counters() (published, skipped uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.published, p.skipped
}
