package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"
)

// ReceiverMeta is published retained on the meta topic while a receiver
// is online.
type ReceiverMeta struct {
	Description string            `json:"description,omitempty"`
	Port        string            `json:"port,omitempty"`
	BaudRate    int               `json:"baud_rate,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ReceiverInfo identifies a receiver.
type ReceiverInfo struct {
	Name string       `json:"name"`
	ID   string       `json:"id"`
	Meta ReceiverMeta `json:"meta"`
}

// Topic returns a topic under the receiver.
func (i ReceiverInfo) Topic(suffix string) string {
	return ReceiverTopic(i.Name, i.ID, suffix)
}

// Registrar announces a receiver with a retained meta message, which is
// cleared on exit or by the will if the connection is lost.
type Registrar struct {
	Queue *Queue
	Info  ReceiverInfo

	metaJSON []byte
}

// NewRegistrar creates a Registrar with its own Queue.
func NewRegistrar(brokerURL string, info ReceiverInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Topic(MetaTopic), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("dr16:" + info.Name + "/" + info.ID)
	}
	r := &Registrar{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	return r, nil
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "mqtt"
}

// StateWriter creates a Writer publishing on the state topic.
func (r *Registrar) StateWriter() *Writer {
	return NewWriter(r.Queue, r.Info.Topic(StateTopic))
}

// StatsWriter creates a Writer publishing retained on the stats topic.
func (r *Registrar) StatsWriter() *Writer {
	w := NewWriter(r.Queue, r.Info.Topic(StatsTopic))
	w.Retain = true
	return w
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	token := r.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	r.Queue.PubWith(r.Info.Topic(MetaTopic), nil, 1, true).WaitTimeout(DefaultPublishTimeout)
	r.Queue.Close()
	return ctx.Err()
}

func (r *Registrar) onConnected() {
	glog.V(2).Infof("announce %s", r.Info.Topic(MetaTopic))
	r.Queue.PubWith(r.Info.Topic(MetaTopic), r.metaJSON, 1, true)
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover collects the receivers announced on the connected Queue until
// the timeout expires.
func Discover(ctx context.Context, q *Queue, timeout time.Duration) ([]ReceiverInfo, error) {
	resCh := make(chan ReceiverInfo, 1)
	sub := q.Sub("+/+/"+MetaTopic, Handler(func(topic string, payload []byte) {
		info, ok := ParseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	deadline := time.After(timeout)
	var res []ReceiverInfo
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-deadline:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// ParseMeta parses a message received on a meta topic. An empty payload
// means the receiver is gone.
func ParseMeta(topic string, payload []byte) (ReceiverInfo, bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != MetaTopic || len(payload) == 0 {
		return ReceiverInfo{}, false
	}
	info := ReceiverInfo{Name: items[0], ID: items[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("invalid meta of %s/%s: %v", info.Name, info.ID, err)
	}
	return info, true
}
