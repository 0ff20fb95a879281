package main

import (
	"log"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// pollTimeoutMillis is the poll() timeout used on every iteration of
// the Reactor's loop, per spec.md §5. A short, fixed timeout is what
// lets the loop notice a requested shutdown without blocking
// indefinitely on I/O readiness.
const pollTimeoutMillis = 100

// maxReadChunk bounds how many bytes the Reactor reads from a single
// ready connection in one pass, per spec.md §5 ("one bounded read per
// readiness event, never loop-until-EAGAIN on a single fd").
const maxReadChunk = 1024

// listenBacklog is the backlog argument to Listen.
const listenBacklog = 10

// Reactor is the single-threaded, non-blocking event loop: it owns the
// listening socket and every client file descriptor, and is the only
// goroutine that ever touches a socket. It drives a Server, which owns
// all protocol state.
//
// This is the one component of this server built directly on
// golang.org/x/sys/unix rather than net: net.Listener/net.Conn hide the
// file descriptor and offer no readiness-notification primitive, so a
// literal poll()-multiplexed reactor (spec.md §5's central requirement)
// is simply inexpressible through it.
type Reactor struct {
	server *Server

	listenFD int

	conns map[ConnID]*Connection

	// Ready receives the actual bound port exactly once, right after
	// Listen succeeds. Config.Port of 0 lets the kernel assign an
	// ephemeral port, which is how tests avoid hardcoding one.
	Ready chan int
}

// NewReactor creates a Reactor bound to server. It does not open any
// sockets; call Run to do that.
func NewReactor(server *Server) *Reactor {
	return &Reactor{
		server: server,
		conns:  make(map[ConnID]*Connection),
		Ready:  make(chan int, 1),
	}
}

// Run opens the listening socket on the configured port and drives the
// poll loop until the server's shutdown flag is observed. It returns
// once every connection has been closed.
func (rx *Reactor) Run() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return errors.Wrap(err, "socket")
	}
	rx.listenFD = fd

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return errors.Wrap(err, "setsockopt SO_REUSEADDR")
	}

	addr := &unix.SockaddrInet4{Port: rx.server.Config.Port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return errors.Wrapf(err, "bind port %d", rx.server.Config.Port)
	}

	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return errors.Wrap(err, "listen")
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return errors.Wrap(err, "set listening socket nonblocking")
	}

	boundPort := rx.server.Config.Port
	if sa, err := unix.Getsockname(fd); err == nil {
		if v4, ok := sa.(*unix.SockaddrInet4); ok {
			boundPort = v4.Port
		}
	}
	rx.Ready <- boundPort

	log.Printf("listening on port %d", boundPort)

	defer unix.Close(fd)

	for {
		if rx.server.isShuttingDown() {
			rx.closeAllConns()
			rx.destroyClosing()
			if len(rx.conns) == 0 {
				rx.server.Channels.Clear()
				return nil
			}
		}

		pfds := rx.buildPollSet()

		n, err := unix.Poll(pfds, pollTimeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return errors.Wrap(err, "poll")
		}

		if n > 0 {
			rx.handleReady(pfds)
		}

		rx.destroyClosing()
	}
}

// closeAllConns force-closes every connection that hasn't already begun
// tearing down. Called once shutdown is requested: per spec.md §5 the
// reactor closes every client socket on shutdown rather than waiting
// for clients to disconnect on their own, since a quiet, registered
// connection would otherwise never reach Closing.
func (rx *Reactor) closeAllConns() {
	for _, c := range rx.conns {
		if c.Phase == Closing {
			continue
		}
		rx.server.closeConnection(c, "Server shutting down")
	}
}

// buildPollSet constructs the PollFd slice for this iteration: the
// listening socket (unless shutting down) plus every live connection,
// each with POLLIN always requested and POLLOUT requested iff it has
// queued outbound bytes.
func (rx *Reactor) buildPollSet() []unix.PollFd {
	pfds := make([]unix.PollFd, 0, len(rx.conns)+1)

	if !rx.server.isShuttingDown() {
		pfds = append(pfds, unix.PollFd{Fd: int32(rx.listenFD), Events: unix.POLLIN})
	}

	for id, c := range rx.conns {
		events := int16(unix.POLLIN)
		if c.WantWrite {
			events |= unix.POLLOUT
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(id), Events: events})
	}

	return pfds
}

// handleReady walks the poll results and services every fd reported
// ready, in whatever order poll() returned them.
func (rx *Reactor) handleReady(pfds []unix.PollFd) {
	for _, pfd := range pfds {
		if pfd.Revents == 0 {
			continue
		}

		if int(pfd.Fd) == rx.listenFD {
			rx.acceptAll()
			continue
		}

		id := ConnID(pfd.Fd)
		c, ok := rx.conns[id]
		if !ok {
			continue
		}

		if pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			rx.server.closeConnection(c, "Connection reset")
			continue
		}

		if pfd.Revents&unix.POLLOUT != 0 {
			rx.writeReady(c)
			if c.Phase == Closing {
				continue
			}
		}

		if pfd.Revents&unix.POLLIN != 0 {
			rx.readReady(c)
		}
	}
}

// acceptAll accepts every pending connection on the listening socket
// until accept(2) returns EAGAIN/EWOULDBLOCK, per spec.md §5 ("drain
// the accept queue fully before returning to poll").
func (rx *Reactor) acceptAll() {
	for {
		fd, _, err := unix.Accept(rx.listenFD)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			log.Printf("accept: %s", err)
			return
		}

		if err := unix.SetNonblock(fd, true); err != nil {
			log.Printf("connection %d: set nonblocking: %s", fd, err)
			unix.Close(fd)
			continue
		}

		c := NewConnection(ConnID(fd), peerAddr(fd))
		rx.conns[c.ID] = c
		rx.server.Registry.Add(c)

		log.Printf("connection %s: accepted", c)
	}
}

// peerAddr best-effort resolves the remote IP for logging. A failure
// here never prevents accepting the connection.
func peerAddr(fd int) string {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return "unknown"
	}
	if v4, ok := sa.(*unix.SockaddrInet4); ok {
		return ipString(v4.Addr)
	}
	if v6, ok := sa.(*unix.SockaddrInet6); ok {
		return ipString6(v6.Addr)
	}
	return "unknown"
}

func ipString(b [4]byte) string {
	return itoa(int(b[0])) + "." + itoa(int(b[1])) + "." + itoa(int(b[2])) + "." + itoa(int(b[3]))
}

func ipString6(b [16]byte) string {
	// Not expected in practice (we only bind AF_INET); kept minimal.
	return "ipv6"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [3]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// readReady performs a single bounded read and feeds every complete
// line it yields to the server, per spec.md §4.2/§4.6.
func (rx *Reactor) readReady(c *Connection) {
	buf := make([]byte, maxReadChunk)

	n, err := unix.Read(int(c.ID), buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return
		}
		rx.server.closeConnection(c, "Read error")
		return
	}

	if n == 0 {
		rx.server.closeConnection(c, "Connection closed")
		return
	}

	if !c.appendInbound(buf[:n]) {
		rx.server.closeConnection(c, "Input buffer exceeded")
		return
	}

	lines, rest := extractLines(c.inboundBytes)
	c.inboundBytes = rest

	for _, line := range lines {
		if c.Phase == Closing {
			break
		}
		rx.server.handleLine(c, line)

		// A handler's own Enqueue can push a connection straight to
		// Closing on outbound back-pressure (spec.md §5) without going
		// through closeConnection. Finish that teardown here so the
		// Registry and every Channel stay consistent with the reactor's
		// own bookkeeping (closeConnection is idempotent).
		if c.Phase == Closing {
			rx.server.closeConnection(c, "Output buffer exceeded")
		}
	}
}

// writeReady writes as much of c's outbound buffer as the kernel will
// currently accept, handling a partial write by leaving the remainder
// queued for the next POLLOUT.
func (rx *Reactor) writeReady(c *Connection) {
	if len(c.outboundBytes) == 0 {
		c.WantWrite = false
		return
	}

	n, err := unix.Write(int(c.ID), c.outboundBytes)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return
		}
		rx.server.closeConnection(c, "Write error")
		return
	}

	c.drainOutbound(n)
}

// destroyClosing finishes spec.md §3's destruction order for every
// connection the Server has logically closed this iteration: the
// Server has already removed it from the Registry and every Channel;
// destroyClosing removes it from the Reactor's own set and closes the
// underlying fd, draining any final bytes (e.g. an ERROR line) first.
func (rx *Reactor) destroyClosing() {
	for id, c := range rx.conns {
		if c.Phase != Closing {
			continue
		}

		// A broadcast recipient whose outbound buffer overflowed reaches
		// Closing inside Enqueue alone; finish its logical teardown here
		// (a no-op for connections already closed by the Server).
		rx.server.closeConnection(c, "Output buffer exceeded")

		for len(c.outboundBytes) > 0 {
			n, err := unix.Write(int(c.ID), c.outboundBytes)
			if err != nil {
				break
			}
			c.drainOutbound(n)
		}

		unix.Close(int(id))
		delete(rx.conns, id)
	}
}
