package main

import (
	"log"
	"sync/atomic"
)

// Server owns every piece of shared state: the Registry, the
// ChannelStore, and the config. Handlers receive a pointer to it and
// mutate it directly; there is exactly one goroutine (the Reactor's)
// ever doing so, so no locking is required (spec.md §5).
type Server struct {
	Config *ServerConfig

	Registry *Registry
	Channels *ChannelStore

	// shuttingDown is set from a signal handler goroutine and observed
	// once per reactor loop iteration. It is the single piece of state
	// touched from outside the reactor goroutine, so it alone needs to be
	// atomic (spec.md §9 Design Notes).
	shuttingDown int32
}

// NewServer creates a Server ready to be driven by a Reactor.
func NewServer(config *ServerConfig) *Server {
	return &Server{
		Config:   config,
		Registry: NewRegistry(),
		Channels: NewChannelStore(),
	}
}

// requestShutdown flips the shutdown flag. Safe to call from a signal
// handler goroutine.
func (s *Server) requestShutdown() {
	atomic.StoreInt32(&s.shuttingDown, 1)
}

// isShuttingDown reports whether shutdown was requested.
func (s *Server) isShuttingDown() bool {
	return atomic.LoadInt32(&s.shuttingDown) != 0
}

// handleLine parses a single framed line from c and dispatches it based
// on c's registration phase (spec.md §4.3/§4.4). All handlers are
// synchronous and only ever append to outbound buffers; this function
// returning is the "ordering guarantee" boundary from spec.md §4.6:
// every outbound append a single inbound line causes happens before
// this function returns.
func (s *Server) handleLine(c *Connection, line []byte) {
	cmd, err := parseLine(line)
	if err != nil {
		log.Printf("connection %s: malformed line: %s", c, err)
		return
	}

	switch c.Phase {
	case AwaitingPassword:
		s.dispatchAwaitingPassword(c, cmd)
	case AwaitingRegistration, Registered:
		s.dispatchPostPassword(c, cmd)
	case Closing:
		// Nothing dispatched once a connection is tearing down.
	}
}

// dispatchAwaitingPassword implements spec.md §4.3's AwaitingPassword
// rule: only PASS is meaningful; CAP LS/END is tolerated as a no-op;
// everything else is silently ignored.
func (s *Server) dispatchAwaitingPassword(c *Connection, cmd Command) {
	switch cmd.Kind {
	case CmdPass:
		s.passCommand(c, cmd)
	case CmdCap:
		s.capCommand(c, cmd)
	default:
		// Silently ignored: we are waiting for PASS.
	}
}

// dispatchPostPassword implements dispatch for AwaitingRegistration and
// Registered connections (spec.md §4.4's handler table).
func (s *Server) dispatchPostPassword(c *Connection, cmd Command) {
	switch cmd.Kind {
	case CmdCap:
		s.capCommand(c, cmd)
	case CmdNick:
		s.nickCommand(c, cmd)
	case CmdUser:
		s.userCommand(c, cmd)
	case CmdPing:
		s.pingCommand(c, cmd)
	case CmdQuit:
		s.quitCommand(c, cmd)
	case CmdWhois:
		s.whoisCommand(c, cmd)
	case CmdWho:
		s.whoCommand(c, cmd)
	default:
		if c.Phase != Registered {
			s.numericReply(c, ErrNotRegistered, "You have not registered")
			return
		}

		switch cmd.Kind {
		case CmdJoin:
			s.joinCommand(c, cmd)
		case CmdPrivmsg:
			s.privmsgCommand(c, cmd)
		case CmdTopic:
			s.topicCommand(c, cmd)
		case CmdMode:
			s.modeCommand(c, cmd)
		case CmdKick:
			s.kickCommand(c, cmd)
		case CmdInvite:
			s.inviteCommand(c, cmd)
		default:
			// Unrecognised command in a post-auth phase (spec.md §4.3).
			s.numericReply(c, ErrUnknownCommand, cmd.Raw, "Unknown command")
		}
	}
}
