package link

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultIdleTimeout is the gap after which the line is considered idle.
// A DR16 frame takes about 2ms on the wire at 100kbps and frames are 14ms
// apart.
const DefaultIdleTimeout = 3 * time.Millisecond

// Stream is a Link reading bytes from an io.Reader, detecting idle lines
// by the absence of bytes.
type Stream struct {
	Reader      io.Reader
	IdleTimeout time.Duration
	ReadTimeout bool // set to true if Reader returns on its own read timeout

	receiver Receiver
	capacity int
	cancel   func()
	done     chan struct{}
	err      error
	lock     sync.Mutex
}

// NewStream creates a Stream.
func NewStream(r io.Reader) *Stream {
	return &Stream{Reader: r, IdleTimeout: DefaultIdleTimeout}
}

// Attach implements Link.
func (s *Stream) Attach(r Receiver) {
	s.lock.Lock()
	s.receiver = r
	s.lock.Unlock()
}

// StartReceive implements Link. Reception runs in a background goroutine
// until Close is called or the reader fails.
func (s *Stream) StartReceive(capacity int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.receiver == nil {
		return ErrNoReceiver
	}
	if s.done != nil {
		return ErrAlreadyStarted
	}
	if capacity <= 0 {
		return fmt.Errorf("invalid capacity %d", capacity)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.capacity, s.cancel, s.done = capacity, cancel, make(chan struct{})
	go s.run(ctx, s.receiver)
	return nil
}

// Done is closed when reception stops. It's nil before StartReceive.
func (s *Stream) Done() <-chan struct{} {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.done
}

// Err returns the error which stopped reception.
func (s *Stream) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

// Close stops reception and closes the reader if it's an io.Closer.
func (s *Stream) Close() error {
	s.lock.Lock()
	cancel, done := s.cancel, s.done
	s.lock.Unlock()
	if cancel != nil {
		cancel()
	}
	var err error
	if closer, ok := s.Reader.(io.Closer); ok {
		err = closer.Close()
	}
	if done != nil {
		<-done
	}
	return err
}

func (s *Stream) run(ctx context.Context, r Receiver) {
	var err error
	if s.ReadTimeout {
		err = s.receiveWithReadTimeout(ctx, r)
	} else {
		err = s.receiveWithTimer(ctx, r)
	}
	glog.V(2).Infof("stream stopped: %v", err)
	s.lock.Lock()
	s.err = err
	s.lock.Unlock()
	close(s.done)
}

func (s *Stream) idleTimeout() time.Duration {
	if s.IdleTimeout > 0 {
		return s.IdleTimeout
	}
	return DefaultIdleTimeout
}

func (s *Stream) receiveWithReadTimeout(ctx context.Context, r Receiver) error {
	buf := make([]byte, s.capacity)
	var pending int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := s.Reader.Read(buf)
		if n > 0 {
			deliver(r, buf[:n])
			pending += n
		}
		if err != nil && !os.IsTimeout(err) {
			if pending > 0 {
				r.OnIdle()
			}
			return err
		}
		if (n == 0 || err != nil) && pending > 0 {
			pending = 0
			r.OnIdle()
		}
	}
}

func (s *Stream) receiveWithTimer(ctx context.Context, r Receiver) error {
	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readLoop(subCtx, chunkCh, errCh)
	var idleTimer <-chan time.Time
	for {
		select {
		case chunk := <-chunkCh:
			deliver(r, chunk)
			idleTimer = time.After(s.idleTimeout())
		case <-idleTimer:
			idleTimer = nil
			r.OnIdle()
		case err := <-errCh:
			if idleTimer != nil {
				r.OnIdle()
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, chunkCh chan []byte, errCh chan error) {
	buf := make([]byte, s.capacity)
	for {
		n, err := s.Reader.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunkCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func deliver(r Receiver, chunk []byte) {
	if glog.V(4) {
		glog.Infof("chunk % x", chunk)
	}
	if err := r.OnChunk(chunk); err != nil {
		glog.Warningf("chunk dropped: %v", err)
	}
}
