package main

import (
	"fmt"
)

// Phase is the registration state of a Connection.
type Phase int

const (
	// AwaitingPassword is the state a connection starts in. Only PASS (and
	// a tolerated CAP LS/END no-op) is meaningful here.
	AwaitingPassword Phase = iota

	// AwaitingRegistration is the state after a correct PASS. The
	// connection needs NICK and USER before it is Registered.
	AwaitingRegistration

	// Registered means the connection completed the registration
	// handshake and can use any command.
	Registered

	// Closing means the connection is being torn down. It may still have
	// bytes to drain from its outbound buffer, but no further commands are
	// dispatched to it.
	Closing
)

func (p Phase) String() string {
	switch p {
	case AwaitingPassword:
		return "AwaitingPassword"
	case AwaitingRegistration:
		return "AwaitingRegistration"
	case Registered:
		return "Registered"
	case Closing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// maxInboundBuffer is the hard cap on unparsed inbound bytes per
// spec.md §4.2. Exceeding it transitions the connection to Closing.
const maxInboundBuffer = 4096

// maxOutboundBuffer is the soft cap on queued outbound bytes per
// spec.md §5 back-pressure policy. Exceeding it transitions the
// connection to Closing rather than growing unboundedly.
const maxOutboundBuffer = 64 * 1024

// initialPasswordAttempts is the number of PASS attempts a connection
// gets before authentication exhaustion closes it.
const initialPasswordAttempts = 3

// ConnID is the opaque handle identifying a Connection. It is the
// connection's underlying file descriptor, treated as an abstract
// integer key everywhere outside the reactor's own syscalls.
type ConnID int32

// Connection holds all per-client state: socket handle, non-blocking
// buffers, registration phase, identity, and output queue.
//
// Connections never reference each other by pointer across a Channel or
// the Registry; everything else holds only a ConnID, so destroying a
// Connection can never leave a dangling reference.
type Connection struct {
	ID ConnID

	IP string

	Phase Phase

	PasswordAttemptsRemaining int

	// Not canonicalized; set by NICK.
	Nickname string

	// Set by USER.
	Username string
	RealName string

	// Channels this connection is currently a member of, by name. Kept
	// so nick-change and disconnect fan-out don't need to scan every
	// channel in the store.
	Channels map[string]struct{}

	inboundBytes  []byte
	outboundBytes []byte

	// WantWrite is recomputed by the reactor after each handler batch:
	// true iff outboundBytes is non-empty.
	WantWrite bool
}

// NewConnection creates a Connection in its initial AwaitingPassword
// phase.
func NewConnection(id ConnID, ip string) *Connection {
	return &Connection{
		ID:                        id,
		IP:                        ip,
		Phase:                     AwaitingPassword,
		PasswordAttemptsRemaining: initialPasswordAttempts,
		Channels:                  make(map[string]struct{}),
	}
}

func (c *Connection) String() string {
	return fmt.Sprintf("%d[%s] %s", c.ID, c.Phase, c.Nickname)
}

// Prefix builds the "nick!user@host" source prefix used on relayed user
// actions (JOIN, PRIVMSG, PART-equivalents, etc). Per spec.md §6, the
// host portion is always "localhost" in this implementation.
func (c *Connection) Prefix() string {
	return fmt.Sprintf("%s!%s@localhost", c.Nickname, c.Username)
}

// Enqueue appends bytes to the connection's outbound buffer. It never
// performs a socket write; the reactor's writability phase is the only
// place sockets are written to, preserving the single-threaded I/O
// invariant from spec.md §5.
//
// If the outbound buffer would exceed the soft cap, the connection is
// marked Closing instead of growing the buffer further.
func (c *Connection) Enqueue(b []byte) {
	if c.Phase == Closing {
		return
	}

	if len(c.outboundBytes)+len(b) > maxOutboundBuffer {
		c.Phase = Closing
		return
	}

	c.outboundBytes = append(c.outboundBytes, b...)
	c.WantWrite = len(c.outboundBytes) > 0
}

// appendInbound appends freshly read bytes to the inbound buffer. It
// returns false if doing so would exceed the hard cap, in which case the
// caller should transition the connection to Closing.
func (c *Connection) appendInbound(b []byte) bool {
	if len(c.inboundBytes)+len(b) > maxInboundBuffer {
		return false
	}
	c.inboundBytes = append(c.inboundBytes, b...)
	return true
}

// drainOutbound removes the first n bytes of the outbound buffer,
// called by the reactor after a partial or full write.
func (c *Connection) drainOutbound(n int) {
	c.outboundBytes = c.outboundBytes[n:]
	c.WantWrite = len(c.outboundBytes) > 0
}
