package link

import "sync"

// Pipe is an in-memory Link. Callers play the part of the peripheral
// by injecting chunks and idle events.
type Pipe struct {
	receiver Receiver
	capacity int
	started  bool
	lock     sync.Mutex
}

// NewPipe creates a Pipe.
func NewPipe() *Pipe {
	return &Pipe{}
}

// Attach implements Link.
func (p *Pipe) Attach(r Receiver) {
	p.lock.Lock()
	p.receiver = r
	p.lock.Unlock()
}

// StartReceive implements Link.
func (p *Pipe) StartReceive(capacity int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.receiver == nil {
		return ErrNoReceiver
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.capacity, p.started = capacity, true
	return nil
}

// Capacity returns the capacity passed to StartReceive.
func (p *Pipe) Capacity() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.capacity
}

// Chunk delivers one chunk to the receiver.
func (p *Pipe) Chunk(b []byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	return p.receiver.OnChunk(b)
}

// Idle delivers an idle-line event to the receiver.
func (p *Pipe) Idle() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	p.receiver.OnIdle()
	return nil
}

// Frame delivers the chunks followed by an idle event. The idle event is
// delivered even if a chunk is rejected, and the first error is returned.
func (p *Pipe) Frame(chunks ...[]byte) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	var err error
	for _, c := range chunks {
		if e := p.receiver.OnChunk(c); e != nil && err == nil {
			err = e
		}
	}
	p.receiver.OnIdle()
	return err
}
