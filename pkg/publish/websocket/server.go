package websocket

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// DefaultClientBuffer is the number of packets queued per client.
const DefaultClientBuffer = 16

// Server broadcasts each packet as a binary message to all connected
// clients. Packets for a client with a full queue are dropped.
type Server struct {
	ClientBuffer int

	lock    sync.Mutex
	clients map[*client]struct{}
	dropped atomic.Uint64
}

type client struct {
	conn   *websocket.Conn
	sendCh chan []byte
}

// NewServer creates a Server.
func NewServer() *Server {
	return &Server{ClientBuffer: DefaultClientBuffer}
}

// ServeHTTP implements http.Handler. Any origin is accepted.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv := websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler:   s.serveConn,
	}
	srv.ServeHTTP(w, r)
}

// WritePacket implements PacketWriter.
func (s *Server) WritePacket(pkt []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for c := range s.clients {
		select {
		case c.sendCh <- pkt:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// Dropped returns the number of packets dropped for slow clients.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Server) serveConn(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	size := s.ClientBuffer
	if size <= 0 {
		size = DefaultClientBuffer
	}
	c := &client{conn: conn, sendCh: make(chan []byte, size)}
	s.lock.Lock()
	if s.clients == nil {
		s.clients = make(map[*client]struct{})
	}
	s.clients[c] = struct{}{}
	s.lock.Unlock()
	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)

	defer func() {
		s.lock.Lock()
		delete(s.clients, c)
		s.lock.Unlock()
		conn.Close()
		glog.V(2).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()

	closedCh := make(chan struct{})
	go func() {
		defer close(closedCh)
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
	}()
	for {
		select {
		case pkt := <-c.sendCh:
			if err := websocket.Message.Send(conn, pkt); err != nil {
				glog.Warningf("websocket send error: %v", err)
				return
			}
		case <-closedCh:
			return
		}
	}
}
