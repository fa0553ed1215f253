package mqtt

import (
	"context"
	"errors"
	"io"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topic suffixes under the receiver topic.
const (
	StateTopic = "state"
	StatsTopic = "stats"
	MetaTopic  = "meta"
)

// DefaultPublishTimeout bounds the wait for a publish acknowledgement.
const DefaultPublishTimeout = time.Second

// ErrPublishTimeout indicates the broker didn't acknowledge in time.
var ErrPublishTimeout = errors.New("publish timeout")

// Publisher publishes payloads, implemented by Queue.
type Publisher interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Writer implements PacketWriter by publishing each packet to a topic.
type Writer struct {
	Queue   Publisher
	Topic   string
	QoS     byte
	Retain  bool
	Timeout time.Duration
}

// NewWriter creates a Writer.
func NewWriter(q Publisher, topic string) *Writer {
	return &Writer{Queue: q, Topic: topic, Timeout: DefaultPublishTimeout}
}

// WritePacket implements PacketWriter.
func (w *Writer) WritePacket(pkt []byte) error {
	token := w.Queue.PubWith(w.Topic, pkt, w.QoS, w.Retain)
	if w.Timeout > 0 {
		if !token.WaitTimeout(w.Timeout) {
			return ErrPublishTimeout
		}
	} else {
		token.Wait()
	}
	return token.Error()
}

// Reader implements PacketReader with packets received on a topic.
type Reader struct {
	Queue *Queue
	Topic string

	packetCh chan []byte
}

// NewReader creates a Reader. Topic may contain wildcards.
func NewReader(q *Queue, topic string) *Reader {
	return &Reader{Queue: q, Topic: topic, packetCh: make(chan []byte, 16)}
}

// ReadPacket implements PacketReader.
func (r *Reader) ReadPacket() ([]byte, error) {
	pkt, ok := <-r.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// Run implements Runnable. ReadPacket returns io.EOF after Run returns.
func (r *Reader) Run(ctx context.Context) error {
	sub := r.Queue.Sub(r.Topic, Handler(r.handleMsg))
	defer close(r.packetCh)
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (r *Reader) handleMsg(_ string, payload []byte) {
	r.packetCh <- payload
}

// ReceiverTopic returns the topic of a receiver relative to the prefix.
func ReceiverTopic(name, id, suffix string) string {
	return name + "/" + id + "/" + suffix
}
