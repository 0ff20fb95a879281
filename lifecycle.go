package main

// closeConnection tears down c's logical state: it announces a QUIT to
// anyone sharing a channel with c (if c ever registered), removes c
// from every channel it belonged to (garbage-collecting any channel
// left empty), removes c from the Registry, and marks it Closing.
//
// The Reactor is responsible for the remaining step of spec.md §3's
// destruction order: removing c's file descriptor from its poll set
// and closing the socket, once it notices c.Phase == Closing.
func (s *Server) closeConnection(c *Connection, reason string) {
	if _, stillTracked := s.Registry.Get(c.ID); !stillTracked {
		// Already torn down (e.g. the outbound buffer overflowed and the
		// reactor is now taking the error path too). Idempotent no-op.
		return
	}

	if c.Phase == Registered {
		s.announceQuit(c, reason)
	}

	s.Registry.Remove(c)

	for name := range c.Channels {
		ch, ok := s.Channels.Get(name)
		if !ok {
			continue
		}
		ch.Part(c.ID)
		s.Channels.DeleteIfEmpty(name)
	}
	c.Channels = make(map[string]struct{})

	s.messageFromServer(c, "ERROR", []string{reason})
	c.Phase = Closing
}

// announceQuit tells every connection sharing a channel with c about
// its departure, each told at most once, using c's current (still
// valid) prefix.
func (s *Server) announceQuit(c *Connection, reason string) {
	told := map[ConnID]struct{}{}

	for name := range c.Channels {
		ch, ok := s.Channels.Get(name)
		if !ok {
			continue
		}
		for id := range ch.Members {
			if id == c.ID {
				continue
			}
			if _, done := told[id]; done {
				continue
			}
			member, ok := s.Registry.Get(id)
			if !ok {
				continue
			}
			s.relay(c, member, "QUIT", []string{reason})
			told[id] = struct{}{}
		}
	}
}
