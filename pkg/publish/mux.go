package publish

import (
	fx "github.com/NewLearnStream/dr16/pkg/framework"
)

// WriterMux writes each packet to multiple PacketWriters.
type WriterMux struct {
	Writers []PacketWriter
}

// WritePacket implements PacketWriter. All writers are tried even if some
// of them fail.
func (m *WriterMux) WritePacket(pkt []byte) error {
	var errs fx.AggregatedError
	for _, w := range m.Writers {
		errs.Add(w.WritePacket(pkt))
	}
	return errs.Aggregate()
}

// Add adds more writers.
func (m *WriterMux) Add(writers ...PacketWriter) *WriterMux {
	m.Writers = append(m.Writers, writers...)
	return m
}
