package sim

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/NewLearnStream/dr16/pkg/link"
)

// Feeder injects generated frames into a link.Pipe the way a peripheral
// would, each frame split into chunks followed by an idle event.
type Feeder struct {
	Pipe      *link.Pipe
	Generator *Generator
	ChunkSize int
}

// NewFeeder creates a Feeder.
func NewFeeder(p *link.Pipe, g *Generator) *Feeder {
	return &Feeder{Pipe: p, Generator: g, ChunkSize: 8}
}

// Name implements Named.
func (f *Feeder) Name() string {
	return "sim"
}

// Chunks splits the n-th frame into chunks.
func (f *Feeder) Chunks(n int) [][]byte {
	frame := f.Generator.Frame(n)
	size := f.ChunkSize
	if size <= 0 || size > len(frame) {
		size = len(frame)
	}
	var chunks [][]byte
	for len(frame) > 0 {
		l := size
		if l > len(frame) {
			l = len(frame)
		}
		chunks = append(chunks, frame[:l])
		frame = frame[l:]
	}
	return chunks
}

// Run implements Runnable.
func (f *Feeder) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.Generator.period())
	defer ticker.Stop()
	for n := 0; ; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		err := f.Pipe.Frame(f.Chunks(n)...)
		if errors.Is(err, link.ErrNotStarted) {
			glog.V(4).Info("receiver not started")
			continue
		}
		if err != nil {
			glog.Warningf("frame %d: %v", n, err)
		}
		n++
	}
}

// Streamer writes generated frames to an io.Writer, leaving an idle gap
// of one period between frames.
type Streamer struct {
	Writer    io.Writer
	Generator *Generator
	// Count limits the number of frames, 0 for unlimited.
	Count int
}

// Run implements Runnable.
func (s *Streamer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Generator.period())
	defer ticker.Stop()
	for n := 0; s.Count <= 0 || n < s.Count; n++ {
		if _, err := s.Writer.Write(s.Generator.Frame(n)); err != nil {
			return err
		}
		glog.V(4).Infof("frame %d written", n)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
